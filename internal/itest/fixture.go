//go:build integration

package itest

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
)

// speechFixture renders a 1280x720 mp4 with spoken audio.
func speechFixture(t *testing.T, dir, text string, seconds int) string {
	t.Helper()

	wav := filepath.Join(dir, "speech.wav")
	cmd := exec.Command("espeak-ng", "-w", wav, text)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("espeak-ng failed: %v\n%s", err, string(b))
	}

	in := filepath.Join(dir, "input.mp4")
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=navy:s=1280x720:r=30:d="+strconv.Itoa(seconds),
		"-i", wav,
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
	return in
}

func textFixture(t *testing.T, dir string) string {
	t.Helper()

	p := filepath.Join(dir, "not-media.txt")
	if err := os.WriteFile(p, []byte("definitely not a video\n"), 0o644); err != nil {
		t.Fatalf("write text fixture: %v", err)
	}
	return p
}

// toneFixture renders a short mp4 with a sine tone, enough for paths that fail
// before transcription matters.
func toneFixture(t *testing.T, dir string) string {
	t.Helper()

	in := filepath.Join(dir, "tone.mp4")
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi", "-i", "testsrc=s=640x360:r=30:d=3",
		"-f", "lavfi", "-i", "sine=f=440:d=3",
		"-shortest",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		in,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg tone fixture failed: %v\n%s", err, string(b))
	}
	return in
}

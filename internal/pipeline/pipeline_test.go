package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/forPelevin/vclip/internal/config"
)

func TestBuildRunOutDir(t *testing.T) {
	got := buildRunOutDir("out", "/tmp/My Cool.Video.mp4", "abcdef123456")
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if base := filepath.Base(got); base != "my-cool-video-abcdef" {
		t.Fatalf("unexpected run dir: %s", base)
	}
	if got != buildRunOutDir("out", "/tmp/My Cool.Video.mp4", "abcdef123456") {
		t.Fatalf("run dir must be stable")
	}
	if base := filepath.Base(buildRunOutDir("out", "/tmp/___.mp4", "abcdef123456")); base != "input-abcdef" {
		t.Fatalf("unexpected fallback name: %s", base)
	}
}

func TestInputID_ChangesWithContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(path, []byte("a"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	first, err := inputID(path)
	if err != nil {
		t.Fatalf("id: %v", err)
	}
	again, _ := inputID(path)
	if first != again || len(first) != 12 {
		t.Fatalf("id must be stable 12 hex chars: %q %q", first, again)
	}
	if err := os.WriteFile(path, []byte("longer"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	changed, _ := inputID(path)
	if changed == first {
		t.Fatalf("id should change when the file changes")
	}
	if _, err := inputID(filepath.Join(t.TempDir(), "missing.mp4")); err == nil {
		t.Fatalf("expected error for missing input")
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	input := filepath.Join(t.TempDir(), "in.mp4")
	if err := os.WriteFile(input, []byte("x"), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	valid := func() Config {
		return Config{
			InputMP4:     input,
			ShortsN:      3,
			MinDur:       15 * time.Second,
			MaxDur:       60 * time.Second,
			Strategy:     "basic",
			Profile:      config.DefaultProfile(),
			Jobs:         1,
			WhisperModel: "model.bin",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing input", func(c *Config) { c.InputMP4 = input + ".nope" }, "stat input"},
		{"zero shorts", func(c *Config) { c.ShortsN = 0 }, "shorts"},
		{"inverted bounds", func(c *Config) { c.MinDur = 2 * time.Minute }, "min duration"},
		{"zero jobs", func(c *Config) { c.Jobs = 0 }, "jobs"},
		{"unknown strategy", func(c *Config) { c.Strategy = "fancy" }, "unknown strategy"},
		{"bad profile", func(c *Config) { c.Profile.Canvas.FPS = 0 }, "profile"},
		{"no model", func(c *Config) { c.WhisperModel = "" }, "whisper model"},
		{"upload privacy", func(c *Config) { c.Upload = true; c.Privacy = "friends" }, "privacy"},
		{"upload creds", func(c *Config) { c.Upload = true; c.Privacy = "private" }, "YOUTUBE_CLIENT_ID"},
		{"base url", func(c *Config) { c.OpenRouterBaseURL = "http://evil.example" }, "OPENROUTER_BASE_URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

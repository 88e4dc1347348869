package effects

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/types"
)

func source(info types.MediaInfo) Stream {
	in := ffmpeg.Input("in.mp4")
	s := Stream{Video: in.Video(), Info: info}
	if info.HasAudio {
		s.Audio = in.Audio()
	}
	return s
}

func landscape() Stream {
	return source(types.MediaInfo{Width: 1920, Height: 1080, Duration: 31.7, FPS: 25, HasAudio: true})
}

func graph(t *testing.T, s Stream) string {
	t.Helper()
	streams := []*ffmpeg.Stream{s.Video}
	if s.Audio != nil {
		streams = append(streams, s.Audio)
	}
	return strings.Join(ffmpeg.Output(streams, "out.mp4").GetArgs(), " ")
}

func mustContain(t *testing.T, got string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Fatalf("expected %q in graph:\n%s", w, got)
		}
	}
}

func TestSpeedChange_Scenario(t *testing.T) {
	t.Parallel()

	out, err := SpeedChange{Factor: 1.35, FPS: 30}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if math.Abs(out.Info.Duration-23.48) > 0.01 {
		t.Fatalf("duration: got %.3f want ~23.48", out.Info.Duration)
	}
	mustContain(t, graph(t, out), "setpts=PTS/1.35", "fps=30", "format=yuv420p", "atempo=1.35")
}

func TestSpeedChange_ChainsTempoStages(t *testing.T) {
	t.Parallel()

	out, err := SpeedChange{Factor: 3, FPS: 30}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	mustContain(t, g, "atempo=2", "atempo=1.5")
	if strings.Contains(g, "atempo=3") {
		t.Fatalf("tempo stage outside [0.5, 2]: %s", g)
	}
}

func TestSpeedChange_RejectsUnsupportedFactors(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{0, -1, 0.01, 20, math.NaN(), math.Inf(1)} {
		_, err := SpeedChange{Factor: f, FPS: 30}.Apply(landscape())
		var ce *ConstraintError
		if !errors.As(err, &ce) {
			t.Fatalf("factor %v: expected ConstraintError, got %v", f, err)
		}
	}
}

func TestTempoStages(t *testing.T) {
	t.Parallel()

	for _, f := range []float64{0.1, 0.25, 0.5, 0.8, 1, 1.35, 2, 3.7, 8, 16} {
		stages := TempoStages(f)
		if len(stages) == 0 {
			t.Fatalf("factor %v: no stages", f)
		}
		prod := 1.0
		for _, s := range stages {
			if s < minTempoStage || s > maxTempoStage {
				t.Fatalf("factor %v: stage %v out of range", f, s)
			}
			prod *= s
		}
		if math.Abs(prod-f) > 1e-9 {
			t.Fatalf("factor %v: stages %v multiply to %v", f, stages, prod)
		}
	}
}

func TestSpeedChange_NoAudio(t *testing.T) {
	t.Parallel()

	s := source(types.MediaInfo{Width: 1920, Height: 1080, Duration: 10})
	out, err := SpeedChange{Factor: 2, FPS: 30}.Apply(s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Audio != nil {
		t.Fatalf("audio stream appeared from nowhere")
	}
}

func TestComputeGeometry_Scenario(t *testing.T) {
	t.Parallel()

	g, err := ComputeGeometry(1920, 1080, 1080, 1920)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	want := Geometry{ScaledW: 1080, ScaledH: 608, PadX: 0, PadY: 656}
	if g != want {
		t.Fatalf("got %+v want %+v", g, want)
	}

	out, err := Reframe{Width: 1080, Height: 1920}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Info.Width != 1080 || out.Info.Height != 1920 {
		t.Fatalf("info not updated: %+v", out.Info)
	}
	mustContain(t, graph(t, out), "scale=1080:608", "setsar=1", "pad=1080:1920:0:656:color=black")
}

func TestComputeGeometry_Pillarbox(t *testing.T) {
	t.Parallel()

	g, err := ComputeGeometry(720, 1280, 1080, 1080)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	if g.ScaledH != 1080 || g.ScaledW != 608 || g.PadX != 236 || g.PadY != 0 {
		t.Fatalf("unexpected geometry: %+v", g)
	}
}

func TestComputeGeometry_NeverExceedsCanvas(t *testing.T) {
	t.Parallel()

	sizes := []int{1, 2, 3, 100, 333, 720, 1079, 1080, 1280, 1920, 3840}
	targets := [][2]int{{1080, 1920}, {1920, 1080}, {1080, 1080}, {720, 1280}, {2, 2}}
	for _, sw := range sizes {
		for _, sh := range sizes {
			for _, tg := range targets {
				g, err := ComputeGeometry(sw, sh, tg[0], tg[1])
				if err != nil {
					t.Fatalf("%dx%d -> %v: %v", sw, sh, tg, err)
				}
				if g.ScaledW > tg[0] || g.ScaledH > tg[1] {
					t.Fatalf("%dx%d -> %v: %+v exceeds canvas", sw, sh, tg, g)
				}
				fixedW := g.ScaledW == tg[0]
				fixedH := g.ScaledH == tg[1]
				if !fixedW && !fixedH {
					t.Fatalf("%dx%d -> %v: %+v fixes neither axis", sw, sh, tg, g)
				}
				if g.PadX < 0 || g.PadY < 0 {
					t.Fatalf("%dx%d -> %v: negative padding %+v", sw, sh, tg, g)
				}
			}
		}
	}
}

func TestComputeGeometry_RejectsEmpty(t *testing.T) {
	t.Parallel()

	if _, err := ComputeGeometry(0, 1080, 1080, 1920); err == nil {
		t.Fatalf("expected error for empty source")
	}
	if _, err := ComputeGeometry(1920, 1080, 1080, 0); err == nil {
		t.Fatalf("expected error for empty target")
	}
}

func TestTransition_Intensities(t *testing.T) {
	t.Parallel()

	got := Transition{Strength: 20, Duration: 1, Steps: 5}.Intensities()
	want := []float64{20, 16, 12, 8, 4}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestTransition_Graph(t *testing.T) {
	t.Parallel()

	out, err := Transition{Strength: 20, Duration: 1, Steps: 5, FPS: 30}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	mustContain(t, g, "split=6", "luma_radius=20", "luma_radius=4", "start=1.000", "concat", "n=6", "fps=30")
	if strings.Contains(g, "luma_radius=3.9") {
		t.Fatalf("radius drifted below its step value:\n%s", g)
	}
	if out.Audio == nil {
		t.Fatalf("audio must pass through untouched")
	}
}

func TestTransition_ClampsWindowToClip(t *testing.T) {
	t.Parallel()

	s := source(types.MediaInfo{Width: 1080, Height: 1920, Duration: 0.5, HasAudio: true})
	out, err := Transition{Strength: 10, Duration: 1, Steps: 5, FPS: 30}.Apply(s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	mustContain(t, g, "split=5", "n=5")
}

func TestTransition_Disabled(t *testing.T) {
	t.Parallel()

	s := landscape()
	out, err := Transition{Strength: 0, Duration: 1, Steps: 5, FPS: 30}.Apply(s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if strings.Contains(graph(t, out), "boxblur") {
		t.Fatalf("zero strength must not blur")
	}
	if _, err := (Transition{Strength: 1, Duration: 1, Steps: 0, FPS: 30}).Apply(s); err == nil {
		t.Fatalf("expected error for zero steps")
	}
}

func TestTextOverlay_Anchors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		anchor Anchor
		want   string
	}{
		{"top", AnchorTop, "y=160"},
		{"bottom", AnchorBottom, "y=h-text_h-160"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := TextOverlay{
				Text: "Three habits", Anchor: tt.anchor, Size: 64, Color: "white", Offset: 160, MaxCharsPerLine: 24,
			}.Apply(landscape())
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			g := graph(t, out)
			mustContain(t, g, "drawtext", "fontcolor=black@0.4", "fontcolor=white", "borderw=3", "x=(w-text_w)/2", tt.want)
			if strings.Index(g, "fontcolor=black@0.4") > strings.Index(g, "fontcolor=white") {
				t.Fatalf("shadow must be drawn before the main text:\n%s", g)
			}
		})
	}
}

func TestTextOverlay_WrapsAndSkipsEmpty(t *testing.T) {
	t.Parallel()

	e := TextOverlay{Text: "the quick brown fox jumps", MaxCharsPerLine: 10, Size: 10}
	if got := e.Lines(); got != "the quick\nbrown fox…" {
		t.Fatalf("lines: %q", got)
	}

	s := landscape()
	out, err := TextOverlay{Text: "   ", Size: 10}.Apply(s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Video != s.Video {
		t.Fatalf("empty text must pass through")
	}
}

func TestAudioNormalization_Order(t *testing.T) {
	t.Parallel()

	out, err := AudioNormalization{TargetLUFS: -14, PeakLimit: -1}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	mustContain(t, g, "loudnorm=I=-14:LRA=11:TP=-1", "acompressor", "highpass=f=80", "deesser")
	order := []string{"loudnorm", "acompressor", "highpass", "deesser"}
	for i := 1; i < len(order); i++ {
		if strings.Index(g, order[i-1]) > strings.Index(g, order[i]) {
			t.Fatalf("%s must come before %s:\n%s", order[i-1], order[i], g)
		}
	}
}

func TestAudioNormalization_Edges(t *testing.T) {
	t.Parallel()

	s := source(types.MediaInfo{Width: 1920, Height: 1080, Duration: 5})
	out, err := AudioNormalization{TargetLUFS: -14, PeakLimit: -1}.Apply(s)
	if err != nil || out.Audio != nil {
		t.Fatalf("silent source must pass through, got %v", err)
	}
	if _, err := (AudioNormalization{TargetLUFS: 3, PeakLimit: -1}).Apply(landscape()); err == nil {
		t.Fatalf("expected error for out of range loudness")
	}
}

func TestCaptionOverlay_WritesDocument(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "subtitles", "short_1.ass")
	e := CaptionOverlay{
		Speech: []types.SpeechSegment{{Start: 0, End: 2, Text: "hello there"}},
		Style:  CaptionStyle(config.DefaultProfile()),
		Path:   path,
	}
	out, err := e.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read subtitles: %v", err)
	}
	if strings.Count(string(b), "Dialogue:") != 2 {
		t.Fatalf("expected one event per word:\n%s", b)
	}
	mustContain(t, graph(t, out), "subtitles", "short_1.ass")
}

func TestOptionValue(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"plain":              "plain",
		"Habits: don't wait": `Habits\: don\'t wait`,
		`C:\subs\a.ass`:      `C\:\\subs\\a.ass`,
	}
	for in, want := range tests {
		if got := optionValue(in); got != want {
			t.Fatalf("optionValue(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTextOverlay_EscapesTitle(t *testing.T) {
	t.Parallel()

	out, err := TextOverlay{Text: "Habits: don't wait", Size: 64}.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	if strings.Contains(g, "text=Habits:") {
		t.Fatalf("colon in title must be escaped:\n%s", g)
	}
	mustContain(t, g, `text=Habits\`, "wait")
}

func TestCaptionOverlay_EscapesPath(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run:1", "short_1.ass")
	e := CaptionOverlay{
		Speech: []types.SpeechSegment{{Start: 0, End: 2, Text: "hello there"}},
		Style:  CaptionStyle(config.DefaultProfile()),
		Path:   path,
	}
	out, err := e.Apply(landscape())
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	g := graph(t, out)
	if strings.Contains(g, "run:1") {
		t.Fatalf("colon in subtitle path must be escaped:\n%s", g)
	}
	mustContain(t, g, `run\`, "short_1.ass")
}

func TestCaptionOverlay_LogsSkippedSegments(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	e := CaptionOverlay{
		Speech: []types.SpeechSegment{
			{Start: 0, End: 2, Text: "hello there"},
			{Start: 2, End: 3, Text: "   "},
		},
		Style: CaptionStyle(config.DefaultProfile()),
		Path:  filepath.Join(t.TempDir(), "short_1.ass"),
		Log:   zap.New(core).Sugar(),
	}
	if _, err := e.Apply(landscape()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	entries := logs.FilterMessage("caption segments without text skipped").All()
	if len(entries) != 1 {
		t.Fatalf("expected one skip entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["count"]; got != int64(1) {
		t.Fatalf("expected count 1, got %v (%T)", got, got)
	}
}

func TestCaptionOverlay_NoSpeech(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "none.ass")
	s := landscape()
	out, err := CaptionOverlay{Style: CaptionStyle(config.DefaultProfile()), Path: path}.Apply(s)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.Video != s.Video {
		t.Fatalf("expected passthrough")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("no document should be written, stat err=%v", err)
	}
}

func TestStrategy(t *testing.T) {
	t.Parallel()

	in := StrategyInput{Profile: config.DefaultProfile(), SubtitlesPath: "x.ass"}
	tests := []struct {
		name string
		want []string
	}{
		{"basic", []string{"audio", "reframe", "text", "captions", "transition", "speed"}},
		{"clean", []string{"audio", "reframe", "captions"}},
		{" Basic ", []string{"audio", "reframe", "text", "captions", "transition", "speed"}},
	}
	for _, tt := range tests {
		effs, err := Strategy(tt.name, in)
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		var got []string
		for _, e := range effs {
			got = append(got, e.Name())
		}
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Fatalf("%s: got %v want %v", tt.name, got, tt.want)
		}
	}
	if _, err := Strategy("fancy", in); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

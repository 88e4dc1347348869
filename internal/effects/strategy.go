package effects

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/domain/subtitles"
	"github.com/forPelevin/vclip/internal/types"
)

// StrategyInput is everything a strategy needs to build its effect list for
// one short.
type StrategyInput struct {
	Short         types.ResolvedShort
	Profile       config.Profile
	SubtitlesPath string
	Log           *zap.SugaredLogger
}

type strategyFunc func(in StrategyInput) []Effect

var strategies = map[string]strategyFunc{
	"basic": basicStrategy,
	"clean": cleanStrategy,
}

// Strategy maps a strategy name to its ordered effect list.
func Strategy(name string, in StrategyInput) ([]Effect, error) {
	fn, ok := strategies[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Errorf("unknown strategy %q (available: %s)", name, strings.Join(Strategies(), ", "))
	}
	return fn(in), nil
}

func Strategies() []string {
	names := make([]string, 0, len(strategies))
	for n := range strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func basicStrategy(in StrategyInput) []Effect {
	p := in.Profile
	return []Effect{
		audio(p),
		reframe(p),
		TextOverlay{
			Text:            in.Short.Title,
			Anchor:          Anchor(p.Title.Anchor),
			FontFile:        p.Title.FontFile,
			Size:            p.Title.Size,
			Color:           p.Title.Color,
			Offset:          p.Title.Offset,
			MaxCharsPerLine: p.Title.MaxCharsPerLine,
		},
		captionOverlay(in),
		Transition{
			Strength: p.Transition.Strength,
			Duration: p.Transition.Duration,
			Steps:    p.Transition.Steps,
			FPS:      p.Canvas.FPS,
		},
		SpeedChange{Factor: p.Speed, FPS: p.Canvas.FPS},
	}
}

func cleanStrategy(in StrategyInput) []Effect {
	return []Effect{
		audio(in.Profile),
		reframe(in.Profile),
		captionOverlay(in),
	}
}

func audio(p config.Profile) Effect {
	return AudioNormalization{TargetLUFS: p.Audio.TargetLUFS, PeakLimit: p.Audio.PeakLimit}
}

func reframe(p config.Profile) Effect {
	return Reframe{Width: p.Canvas.Width, Height: p.Canvas.Height}
}

func captionOverlay(in StrategyInput) Effect {
	return CaptionOverlay{
		Speech:   in.Short.Speech,
		Style:    CaptionStyle(in.Profile),
		FontsDir: in.Profile.Captions.FontsDir,
		Path:     in.SubtitlesPath,
		Log:      in.Log,
	}
}

// CaptionStyle derives the subtitle style from a profile, bottom-centred on
// the profile canvas.
func CaptionStyle(p config.Profile) subtitles.Style {
	c := p.Captions
	return subtitles.Style{
		Font:            c.Font,
		Size:            c.Size,
		Color:           c.Color,
		DimColor:        c.DimColor,
		HighlightColor:  c.HighlightColor,
		OutlineColor:    c.OutlineColor,
		Outline:         c.Outline,
		Shadow:          c.Shadow,
		MarginV:         c.MarginV,
		Alignment:       2,
		PlayResX:        p.Canvas.Width,
		PlayResY:        p.Canvas.Height,
		MaxCharsPerLine: c.MaxCharsPerLine,
		WordHighlight:   c.WordHighlight,
	}
}

package config

import (
	"math"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Profile holds every rendering parameter. Fonts are resolved only from here.
type Profile struct {
	Strategy   string           `yaml:"strategy"`
	Canvas     CanvasConfig     `yaml:"canvas"`
	Speed      float64          `yaml:"speed"`
	Transition TransitionConfig `yaml:"transition"`
	Title      TitleConfig      `yaml:"title"`
	Captions   CaptionsConfig   `yaml:"captions"`
	Audio      AudioConfig      `yaml:"audio"`
	Encoder    EncoderConfig    `yaml:"encoder"`
}

type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	FPS    int `yaml:"fps"`
}

type TransitionConfig struct {
	Strength float64 `yaml:"strength"`
	Duration float64 `yaml:"duration"`
	Steps    int     `yaml:"steps"`
}

type TitleConfig struct {
	FontFile        string `yaml:"font_file"`
	Size            int    `yaml:"size"`
	Color           string `yaml:"color"`
	Anchor          string `yaml:"anchor"`
	Offset          int    `yaml:"offset"`
	MaxCharsPerLine int    `yaml:"max_chars_per_line"`
}

type CaptionsConfig struct {
	FontsDir        string  `yaml:"fonts_dir"`
	Font            string  `yaml:"font"`
	Size            int     `yaml:"size"`
	Color           string  `yaml:"color"`
	DimColor        string  `yaml:"dim_color"`
	HighlightColor  string  `yaml:"highlight_color"`
	OutlineColor    string  `yaml:"outline_color"`
	Outline         float64 `yaml:"outline"`
	Shadow          float64 `yaml:"shadow"`
	MarginV         int     `yaml:"margin_v"`
	MaxCharsPerLine int     `yaml:"max_chars_per_line"`
	WordHighlight   bool    `yaml:"word_highlight"`
}

type AudioConfig struct {
	TargetLUFS float64 `yaml:"target_lufs"`
	PeakLimit  float64 `yaml:"peak_limit"`
}

type EncoderConfig struct {
	VideoCodec   string `yaml:"video_codec"`
	AudioCodec   string `yaml:"audio_codec"`
	VideoBitrate string `yaml:"video_bitrate"`
	AudioBitrate string `yaml:"audio_bitrate"`
	SampleRate   int    `yaml:"sample_rate"`
	Preset       string `yaml:"preset"`
}

// Playback speed bounds. Tempo filters chain within these.
const (
	MinSpeed = 1.0 / 16
	MaxSpeed = 16.0
)

// DefaultProfile leaves font paths empty so fontconfig resolves the families.
func DefaultProfile() Profile {
	return Profile{
		Strategy: "basic",
		Canvas:   CanvasConfig{Width: 1080, Height: 1920, FPS: 30},
		Speed:    1.35,
		Transition: TransitionConfig{
			Strength: 20,
			Duration: 1.0,
			Steps:    5,
		},
		Title: TitleConfig{
			Size:            64,
			Color:           "white",
			Anchor:          "top",
			Offset:          160,
			MaxCharsPerLine: 24,
		},
		Captions: CaptionsConfig{
			Font:            "Sans",
			Size:            72,
			Color:           "#FFFFFF",
			DimColor:        "#D0D7DE",
			HighlightColor:  "#FFD200",
			OutlineColor:    "#000000",
			Outline:         5,
			Shadow:          2,
			MarginV:         420,
			MaxCharsPerLine: 22,
			WordHighlight:   true,
		},
		Audio: AudioConfig{TargetLUFS: -14, PeakLimit: -1},
		Encoder: EncoderConfig{
			VideoCodec:   "libx264",
			AudioCodec:   "aac",
			VideoBitrate: "5M",
			AudioBitrate: "192k",
			SampleRate:   48000,
			Preset:       "fast",
		},
	}
}

// LoadProfile reads a YAML profile over the defaults. An empty path returns
// the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrap(err, "read profile")
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, errors.Wrapf(err, "parse profile %s", path)
	}
	return p, nil
}

func (p Profile) Validate() error {
	if p.Canvas.Width <= 0 || p.Canvas.Height <= 0 {
		return errors.New("canvas dimensions must be > 0")
	}
	if p.Canvas.Width%2 != 0 || p.Canvas.Height%2 != 0 {
		return errors.Errorf("canvas %dx%d must have even dimensions", p.Canvas.Width, p.Canvas.Height)
	}
	if p.Canvas.FPS <= 0 {
		return errors.New("canvas fps must be > 0")
	}
	if math.IsNaN(p.Speed) || p.Speed < MinSpeed || p.Speed > MaxSpeed {
		return errors.Errorf("speed %v must be within [%v, %v]", p.Speed, MinSpeed, MaxSpeed)
	}
	if p.Transition.Steps < 1 {
		return errors.New("transition steps must be >= 1")
	}
	if p.Transition.Duration < 0 || p.Transition.Strength < 0 {
		return errors.New("transition duration and strength must be >= 0")
	}
	switch p.Title.Anchor {
	case "top", "bottom":
	default:
		return errors.Errorf("title anchor %q must be top or bottom", p.Title.Anchor)
	}
	if p.Captions.MaxCharsPerLine < 4 {
		return errors.New("captions max_chars_per_line must be >= 4")
	}
	if p.Captions.Size <= 0 || p.Title.Size <= 0 {
		return errors.New("font sizes must be > 0")
	}
	if err := checkPath(p.Title.FontFile, false); err != nil {
		return errors.Wrap(err, "title font_file")
	}
	if err := checkPath(p.Captions.FontsDir, true); err != nil {
		return errors.Wrap(err, "captions fonts_dir")
	}
	return nil
}

// checkPath accepts an empty path.
func checkPath(path string, dir bool) error {
	if path == "" {
		return nil
	}
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	switch {
	case dir && !st.IsDir():
		return errors.Errorf("%s is not a directory", path)
	case !dir && st.IsDir():
		return errors.Errorf("%s is a directory", path)
	}
	return nil
}

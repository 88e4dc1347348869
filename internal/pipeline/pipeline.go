package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/effects"
	"github.com/forPelevin/vclip/internal/ports"
	"github.com/forPelevin/vclip/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/vclip/internal/ports/adapters/openrouter"
	"github.com/forPelevin/vclip/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/vclip/internal/ports/adapters/youtube"
	"github.com/forPelevin/vclip/internal/render"
	"github.com/forPelevin/vclip/internal/usecase"
)

type Config struct {
	InputMP4 string
	OutDir   string
	ShortsN  int
	MinDur   time.Duration
	MaxDur   time.Duration
	Strategy string
	Profile  config.Profile
	Jobs     int
	Refresh  bool
	// Debug keeps intermediate renders and work directories.
	Debug   bool
	Upload  bool
	Privacy string
	Log     *zap.SugaredLogger

	// CacheDir is the base directory for local artifacts (audio, transcripts, etc.).
	// If empty, defaults to ".cache".
	CacheDir string

	FFmpegPath  string
	FFprobePath string

	WhisperBin   string
	WhisperModel string

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string

	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeRefreshToken string
}

func (c Config) Validate() error {
	if c.InputMP4 == "" {
		return errors.New("input is empty")
	}
	if _, err := os.Stat(c.InputMP4); err != nil {
		return errors.Wrap(err, "stat input")
	}
	if c.ShortsN <= 0 {
		return errors.New("shorts must be > 0")
	}
	if c.MinDur <= 0 {
		return errors.New("min duration must be > 0")
	}
	if c.MaxDur <= 0 {
		return errors.New("max duration must be > 0")
	}
	if c.MinDur > c.MaxDur {
		return errors.New("min duration must be <= max duration")
	}
	if c.Jobs <= 0 {
		return errors.New("jobs must be > 0")
	}
	if !slices.Contains(effects.Strategies(), strings.ToLower(strings.TrimSpace(c.Strategy))) {
		return errors.Errorf("unknown strategy %q (available: %s)", c.Strategy, strings.Join(effects.Strategies(), ", "))
	}
	if err := c.Profile.Validate(); err != nil {
		return errors.Wrap(err, "profile")
	}
	if c.WhisperModel == "" {
		return errors.New("whisper model path is required")
	}
	if c.Upload {
		switch c.Privacy {
		case "private", "unlisted", "public":
		default:
			return errors.Errorf("privacy %q must be private, unlisted or public", c.Privacy)
		}
		if err := c.uploader().Validate(); err != nil {
			return err
		}
	}
	return openrouter.ValidateBaseURL(
		c.OpenRouterBaseURL,
		c.OpenRouterAllowedHosts,
	)
}

func (c Config) uploader() *youtube.Adapter {
	return youtube.New(c.YouTubeClientID, c.YouTubeClientSecret, c.YouTubeRefreshToken)
}

func Run(ctx context.Context, cfg Config) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	v := ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath)
	deps := usecase.Deps{
		Video:    v,
		ASR:      whispercpp.New(cfg.WhisperBin, cfg.WhisperModel),
		Selector: openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL),
	}
	if cfg.Upload {
		deps.Uploader = cfg.uploader()
	}
	uc := usecase.New(deps)

	jobID, err := inputID(cfg.InputMP4)
	if err != nil {
		return err
	}
	baseCache := cfg.CacheDir
	if baseCache == "" {
		baseCache = ".cache"
	}
	cacheDir := filepath.Join(baseCache, "runs", jobID)
	log.Infow("preparing workspace", "cache", cacheDir)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "out"
	}
	runOutDir := buildRunOutDir(outDir, cfg.InputMP4, jobID)
	for _, d := range []string{"shorts", "subtitles"} {
		if err := os.MkdirAll(filepath.Join(runOutDir, d), 0o755); err != nil {
			return err
		}
	}
	log.Infow("output run dir", "dir", runOutDir)

	res, err := uc.Run(ctx, usecase.Input{
		InputMP4: cfg.InputMP4,
		ShortsN:  cfg.ShortsN,
		MinDur:   cfg.MinDur,
		MaxDur:   cfg.MaxDur,
		Strategy: strings.ToLower(strings.TrimSpace(cfg.Strategy)),
		Profile:  cfg.Profile,
		Jobs:     cfg.Jobs,
		Refresh:  cfg.Refresh,
		Debug:    cfg.Debug,
		Privacy:  cfg.Privacy,
		CacheDir: cacheDir,
		OutDir:   runOutDir,
		Log:      log,
	})
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(res.Manifest, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal manifest")
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return err
	}
	log.Infof("manifest written (%d shorts): %s", len(res.Manifest.Shorts), manifestPath)
	return nil
}

// buildRunOutDir is stable for a given input so re-runs find the shorts
// they already rendered.
func buildRunOutDir(outRoot, inputMP4, jobID string) string {
	name := strings.TrimSuffix(filepath.Base(inputMP4), filepath.Ext(inputMP4))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s", name, jobID[:6]))
}

// inputID identifies an input by absolute path, size and modification time,
// so a replaced file gets a fresh cache.
func inputID(inputMP4 string) (string, error) {
	abs, err := filepath.Abs(inputMP4)
	if err != nil {
		return "", errors.Wrap(err, "resolve input path")
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrap(err, "stat input")
	}
	return hash(fmt.Sprintf("%s|%d|%d", abs, st.Size(), st.ModTime().UnixNano())), nil
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])[:12]
}

// ensure adapters implement ports
var (
	_ ports.VideoTool = (*ffmpeg.Adapter)(nil)
	_ ports.ASR       = (*whispercpp.Adapter)(nil)
	_ ports.Selector  = (*openrouter.Adapter)(nil)
	_ ports.Uploader  = (*youtube.Adapter)(nil)
	_ render.Engine   = (*ffmpeg.Adapter)(nil)
)

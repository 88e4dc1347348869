package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/pipeline"
)

func run(cmd *cobra.Command, input string) error {
	outDir, _ := cmd.Flags().GetString("out")
	shortsN, _ := cmd.Flags().GetInt("shorts")
	strategy, _ := cmd.Flags().GetString("strategy")
	profilePath, _ := cmd.Flags().GetString("profile")
	speed, _ := cmd.Flags().GetFloat64("speed")
	jobs, _ := cmd.Flags().GetInt("jobs")
	refresh, _ := cmd.Flags().GetBool("refresh")
	debug, _ := cmd.Flags().GetBool("debug")
	verbose, _ := cmd.Flags().GetBool("verbose")
	upload, _ := cmd.Flags().GetBool("upload")
	privacy, _ := cmd.Flags().GetString("privacy")
	minSec, _ := cmd.Flags().GetInt("min")
	maxSec, _ := cmd.Flags().GetInt("max")

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return errors.New("OPENROUTER_API_KEY is required (set it in .env)")
	}

	absIn, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	profile, err := config.LoadProfile(profilePath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cmd.Flags().Changed("speed") {
		profile.Speed = speed
	}
	strategy = resolveStrategy(strategy, cmd.Flags().Changed("strategy"), profile)

	log, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 3*time.Hour)
	defer cancel()

	cfg := pipeline.Config{
		InputMP4: absIn,
		OutDir:   outDir,
		ShortsN:  shortsN,
		MinDur:   time.Duration(minSec) * time.Second,
		MaxDur:   time.Duration(maxSec) * time.Second,
		Strategy: strategy,
		Profile:  profile,
		Jobs:     jobs,
		Refresh:  refresh,
		Debug:    debug,
		Upload:   upload,
		Privacy:  privacy,
		Log:      log.Sugar(),

		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",

		WhisperBin:   getenvDefault("WHISPER_BIN", ".cache/bin/whisper.cpp"),
		WhisperModel: getenvDefault("WHISPER_MODEL", ".cache/models/ggml-base.bin"),

		OpenRouterAPIKey:       apiKey,
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", "deepseek/deepseek-chat"),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: splitList(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),

		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeRefreshToken: os.Getenv("YOUTUBE_REFRESH_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

// resolveStrategy prefers an explicit --strategy, then the profile's, then
// the flag default.
func resolveStrategy(flag string, flagSet bool, p config.Profile) string {
	if flagSet || strings.TrimSpace(p.Strategy) == "" {
		return flag
	}
	return p.Strategy
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Development = false
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		zc.Level.SetLevel(zap.DebugLevel)
	}
	return zc.Build()
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/domain/resolve"
	"github.com/forPelevin/vclip/internal/effects"
	"github.com/forPelevin/vclip/internal/ports"
	"github.com/forPelevin/vclip/internal/render"
	"github.com/forPelevin/vclip/internal/types"
)

type Deps struct {
	Video    ports.VideoTool
	ASR      ports.ASR
	Selector ports.Selector
	// Uploader is optional; nil disables uploads.
	Uploader ports.Uploader
}

type Usecase struct{ d Deps }

func New(d Deps) Usecase { return Usecase{d: d} }

type Input struct {
	InputMP4 string
	ShortsN  int
	MinDur   time.Duration
	MaxDur   time.Duration
	Strategy string
	Profile  config.Profile
	Jobs     int
	Refresh  bool
	Debug    bool
	Privacy  string
	CacheDir string
	OutDir   string
	Log      *zap.SugaredLogger
}

type Result struct {
	Manifest types.Manifest
}

func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	log := in.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	sp, err := u.speech(ctx, in, log)
	if err != nil {
		return Result{}, err
	}
	log.Infow("transcript ready", "segments", len(sp.Segments), "language", sp.Language)

	cands, err := u.candidates(ctx, in, sp, log)
	if err != nil {
		return Result{}, err
	}
	log.Infow("candidates ready", "count", len(cands))

	m := types.Manifest{Input: in.InputMP4, Strategy: in.Strategy, Requested: len(cands)}
	clips := make([]*types.ManifestClip, len(cands))

	jobs := in.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, c := range cands {
		rs, err := resolve.Resolve(c, sp)
		if err != nil {
			log.Warnw("skip short", "index", i+1, "reason", err)
			continue
		}
		i := i
		g.Go(func() error {
			clip, err := u.renderShort(gctx, in, i, rs, log)
			if err != nil {
				if IsFatal(err) {
					return err
				}
				log.Warnw("skip short", "index", i+1, "reason", err)
				return nil
			}
			clips[i] = clip
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for _, c := range clips {
		if c != nil {
			m.Shorts = append(m.Shorts, *c)
		}
	}
	m.Rendered = len(m.Shorts)
	log.Infof("rendered %d of %d shorts", m.Rendered, m.Requested)
	return Result{Manifest: m}, nil
}

// ShortName is the deterministic file stem of the i-th (0-based) short.
func ShortName(i int, rs types.ResolvedShort) string {
	return fmt.Sprintf("short_%d_%.0fs-%.0fs", i+1, rs.Start, rs.End)
}

func (u Usecase) renderShort(ctx context.Context, in Input, i int, rs types.ResolvedShort, log *zap.SugaredLogger) (*types.ManifestClip, error) {
	name := ShortName(i, rs)
	log = log.With("short", name)
	final := filepath.Join(in.OutDir, "shorts", name+".mp4")
	subs := filepath.Join(in.OutDir, "subtitles", name+".ass")

	clip := &types.ManifestClip{
		ID:          name,
		StartIndex:  rs.StartSegmentIndex,
		EndIndex:    rs.EndSegmentIndex,
		StartSec:    rs.Start,
		EndSec:      rs.End,
		Title:       rs.Title,
		Description: rs.Description,
		Tags:        rs.Tags,
		Text:        rs.Transcript,
		File:        filepath.ToSlash(filepath.Join("shorts", name+".mp4")),
	}

	if !in.Refresh && fileExists(final) {
		log.Infow("short exists, skipping render", "file", final)
		clip.Cached = true
	} else {
		if err := u.renderFresh(ctx, in, name, rs, final, subs, log); err != nil {
			return nil, err
		}
		log.Infow("short rendered", "file", final, "duration", rs.Duration())
	}
	if fileExists(subs) {
		clip.Subtitles = filepath.ToSlash(filepath.Join("subtitles", name+".ass"))
	}

	if u.d.Uploader != nil {
		id, err := u.d.Uploader.Upload(ctx, final, types.UploadMeta{
			Title:       rs.Title,
			Description: rs.Description,
			Tags:        rs.Tags,
			Privacy:     in.Privacy,
		})
		switch {
		case err != nil && IsFatal(err):
			return nil, err
		case err != nil:
			log.Warnw("upload failed", "error", err)
		default:
			clip.VideoID = id
			log.Infow("short uploaded", "video_id", id)
		}
	}
	return clip, nil
}

func (u Usecase) renderFresh(ctx context.Context, in Input, name string, rs types.ResolvedShort, final, subs string, log *zap.SugaredLogger) error {
	work := filepath.Join(in.OutDir, "work",
		fmt.Sprintf("%s-%s-%s", name, time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8]))
	if err := os.MkdirAll(work, 0o755); err != nil {
		return errors.Wrap(err, "create work dir")
	}

	cut := filepath.Join(work, "cut.mp4")
	if err := u.d.Video.Cut(ctx, in.InputMP4, rs.Start, rs.End, cut); err != nil {
		return errors.Wrap(err, "cut")
	}

	effs, err := effects.Strategy(in.Strategy, effects.StrategyInput{
		Short:         rs,
		Profile:       in.Profile,
		SubtitlesPath: subs,
		Log:           log,
	})
	if err != nil {
		return err
	}

	ex := &render.Executor{
		Engine:  u.d.Video,
		Encoder: in.Profile.Encoder,
		FPS:     in.Profile.Canvas.FPS,
		Debug:   in.Debug,
		Log:     log,
	}
	// final only ever receives a complete file
	tmp := filepath.Join(work, "final.mp4")
	if _, err := ex.Run(ctx, cut, tmp, work, effs); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		return errors.Wrap(err, "create shorts dir")
	}
	if err := os.Rename(tmp, final); err != nil {
		return errors.Wrap(err, "move final short")
	}
	if !in.Debug {
		if err := os.RemoveAll(work); err != nil {
			log.Warnw("remove work dir", "dir", work, "error", err)
		}
	}
	return nil
}

func (u Usecase) speech(ctx context.Context, in Input, log *zap.SugaredLogger) (types.Speech, error) {
	if err := os.MkdirAll(in.CacheDir, 0o755); err != nil {
		return types.Speech{}, errors.Wrap(err, "create cache dir")
	}
	path := filepath.Join(in.CacheDir, "speech.json")
	var sp types.Speech
	if !in.Refresh {
		ok, err := readJSON(path, &sp)
		if err != nil {
			log.Warnw("ignore unreadable transcript cache", "file", path, "error", err)
		}
		if ok && err == nil {
			log.Infow("using cached transcript", "file", path)
			return sp, nil
		}
	}

	wav := filepath.Join(in.CacheDir, "audio.wav")
	if in.Refresh || !fileExists(wav) {
		log.Infow("extracting audio", "file", wav)
		if err := u.d.Video.ExtractAudioMono16k(ctx, in.InputMP4, wav); err != nil {
			return types.Speech{}, err
		}
	}

	log.Infow("transcribing")
	sp, err := u.d.ASR.Transcribe(ctx, wav, in.CacheDir)
	if err != nil {
		return types.Speech{}, err
	}
	if info, err := u.d.Video.Probe(ctx, in.InputMP4); err == nil && info.Duration > 0 {
		sp.DurationSeconds = info.Duration
	}
	if err := writeJSON(path, sp); err != nil {
		return types.Speech{}, err
	}
	return sp, nil
}

type selectionCache struct {
	ShortsN int                    `json:"shorts_n"`
	MinSec  float64                `json:"min_sec"`
	MaxSec  float64                `json:"max_sec"`
	Shorts  []types.ShortCandidate `json:"shorts"`
}

func (u Usecase) candidates(ctx context.Context, in Input, sp types.Speech, log *zap.SugaredLogger) ([]types.ShortCandidate, error) {
	path := filepath.Join(in.CacheDir, "shorts.json")
	want := selectionCache{ShortsN: in.ShortsN, MinSec: in.MinDur.Seconds(), MaxSec: in.MaxDur.Seconds()}
	if !in.Refresh {
		var cached selectionCache
		ok, err := readJSON(path, &cached)
		if err != nil {
			log.Warnw("ignore unreadable selection cache", "file", path, "error", err)
		}
		if ok && err == nil && cached.ShortsN == want.ShortsN && cached.MinSec == want.MinSec && cached.MaxSec == want.MaxSec {
			log.Infow("using cached selection", "file", path)
			return cached.Shorts, nil
		}
	}

	log.Infow("selecting shorts", "requested", in.ShortsN)
	cands, err := u.d.Selector.Select(ctx, sp, in.ShortsN, in.MinDur, in.MaxDur)
	if err != nil {
		return nil, err
	}
	want.Shorts = cands
	if err := writeJSON(path, want); err != nil {
		return nil, err
	}
	return cands, nil
}

func readJSON(path string, v any) (bool, error) {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, errors.Wrapf(err, "decode %s", path)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal cache")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir() && st.Size() > 0
}

package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/forPelevin/vclip/internal/config"
	"github.com/forPelevin/vclip/internal/effects"
	"github.com/forPelevin/vclip/internal/types"
)

// Engine turns a declarative filter graph into a file.
type Engine interface {
	Render(ctx context.Context, graph *ffmpeg.Stream) error
	Probe(ctx context.Context, path string) (types.MediaInfo, error)
}

type State int

const (
	Idle State = iota
	Applying
	Materialized
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Applying:
		return "applying"
	case Materialized:
		return "materialized"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// Failure is returned when a step cannot be applied or rendered. The
// intermediates produced so far are left on disk.
type Failure struct {
	Step          int
	Effect        string
	Intermediates []string
	Err           error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("render step %d (%s): %v", f.Step, f.Effect, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Executor applies an ordered effect list to one clip, materialising one
// file per effect. An Executor is used for a single run.
type Executor struct {
	Engine  Engine
	Encoder config.EncoderConfig
	FPS     int
	// Debug keeps intermediates after a successful run.
	Debug bool
	Log   *zap.SugaredLogger

	state State
	step  int
	owned []string
}

func (e *Executor) State() State { return e.state }

// Intermediates lists the files produced before the final one.
func (e *Executor) Intermediates() []string { return append([]string(nil), e.owned...) }

// Run renders src through effs. Intermediates go to workDir; the last step
// writes dst. Without effects src is re-encoded into dst.
func (e *Executor) Run(ctx context.Context, src, dst, workDir string, effs []effects.Effect) (string, error) {
	if e.state != Idle {
		return "", errors.Errorf("executor already used (state %s)", e.state)
	}
	log := e.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	info, err := e.Engine.Probe(ctx, src)
	if err != nil {
		return "", e.fail(0, "probe", err)
	}
	if len(effs) == 0 {
		if err := e.materialize(ctx, effects.Stream{Info: info}, src, dst, nil); err != nil {
			return "", e.fail(0, "encode", err)
		}
		e.state = Done
		return dst, nil
	}

	cur := src
	for i, eff := range effs {
		e.state, e.step = Applying, i
		log.Debugw("apply effect", "step", i, "effect", eff.Name(), "input", cur)

		out := dst
		if i < len(effs)-1 {
			out = filepath.Join(workDir, fmt.Sprintf("step_%02d_%s.mp4", i+1, eff.Name()))
		}
		var next types.MediaInfo
		err := e.materialize(ctx, effects.Stream{Info: info}, cur, out, func(s effects.Stream) (effects.Stream, error) {
			res, err := eff.Apply(s)
			next = res.Info
			return res, err
		})
		if err != nil {
			return "", e.fail(i, eff.Name(), err)
		}
		if out != dst {
			e.owned = append(e.owned, out)
		}
		e.state = Materialized
		info = next
		cur = out
	}

	e.state = Done
	if e.Debug {
		log.Debugw("keeping intermediates", "files", e.owned)
		return dst, nil
	}
	for _, p := range e.owned {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Warnw("remove intermediate", "file", p, "error", err)
		}
	}
	return dst, nil
}

func (e *Executor) materialize(ctx context.Context, s effects.Stream, in, out string, apply func(effects.Stream) (effects.Stream, error)) error {
	src := ffmpeg.Input(in, ffmpeg.KwArgs{"fflags": "+genpts"})
	s.Video = src.Video()
	if s.Info.HasAudio {
		s.Audio = src.Audio()
	}
	if apply != nil {
		var err error
		if s, err = apply(s); err != nil {
			return err
		}
	}
	streams := []*ffmpeg.Stream{s.Video}
	if s.Audio != nil {
		streams = append(streams, s.Audio)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return errors.Wrap(err, "create output dir")
	}
	graph := ffmpeg.Output(streams, out, e.OutputArgs()).OverWriteOutput()
	return e.Engine.Render(ctx, graph)
}

// OutputArgs are the encoder settings used for every materialised file.
func (e *Executor) OutputArgs() ffmpeg.KwArgs {
	fps := e.FPS
	if fps <= 0 {
		fps = 30
	}
	enc := e.Encoder
	return ffmpeg.KwArgs{
		"c:v":              enc.VideoCodec,
		"c:a":              enc.AudioCodec,
		"b:v":              enc.VideoBitrate,
		"b:a":              enc.AudioBitrate,
		"ar":               strconv.Itoa(enc.SampleRate),
		"preset":           enc.Preset,
		"pix_fmt":          "yuv420p",
		"force_key_frames": "0",
		"bf":               "0",
		"g":                strconv.Itoa(2 * fps),
		"movflags":         "+faststart",
		"x264-params":      "scenecut=0:open_gop=0:ref=1",
	}
}

func (e *Executor) fail(step int, name string, err error) error {
	e.state = Failed
	return &Failure{
		Step:          step,
		Effect:        name,
		Intermediates: e.Intermediates(),
		Err:           err,
	}
}

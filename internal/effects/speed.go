package effects

import (
	"math"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vclip/internal/config"
)

const (
	minTempoStage = 0.5
	maxTempoStage = 2.0

	MinSpeed = config.MinSpeed
	MaxSpeed = config.MaxSpeed
)

// SpeedChange retimes video and audio by Factor and forces a constant
// output frame rate.
type SpeedChange struct {
	Factor float64
	FPS    int
}

func (SpeedChange) effect()      {}
func (SpeedChange) Name() string { return "speed" }

func (e SpeedChange) Apply(s Stream) (Stream, error) {
	if math.IsNaN(e.Factor) || math.IsInf(e.Factor, 0) || e.Factor < MinSpeed || e.Factor > MaxSpeed {
		return Stream{}, &ConstraintError{
			Effect: e.Name(), Param: "factor", Value: e.Factor,
			Reason: "must be within [" + fmtFloat(MinSpeed) + ", " + fmtFloat(MaxSpeed) + "]",
		}
	}
	if e.FPS <= 0 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "fps", Value: float64(e.FPS), Reason: "must be > 0"}
	}

	out := s
	out.Video = s.Video.
		Filter("setpts", ffmpeg.Args{"PTS/" + fmtFloat(e.Factor)}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(e.FPS)}).
		Filter("format", ffmpeg.Args{"yuv420p"})
	if s.Audio != nil {
		a := s.Audio
		for _, st := range TempoStages(e.Factor) {
			a = a.Filter("atempo", ffmpeg.Args{fmtFloat(st)})
		}
		out.Audio = a
	}
	out.Info.Duration = s.Info.Duration / e.Factor
	out.Info.FPS = float64(e.FPS)
	return out, nil
}

// TempoStages splits factor into atempo stages that each lie in [0.5, 2].
// The product of the stages equals factor.
func TempoStages(factor float64) []float64 {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil
	}
	var stages []float64
	for factor > maxTempoStage {
		stages = append(stages, maxTempoStage)
		factor /= maxTempoStage
	}
	for factor < minTempoStage {
		stages = append(stages, minTempoStage)
		factor /= minTempoStage
	}
	return append(stages, factor)
}

package effects

import (
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Transition blurs the opening of the clip and sharpens it in Steps equal
// sub-intervals over Duration seconds. Sub-interval i is blurred with
// radius Strength*(1-i/Steps); the rest of the clip is left untouched.
type Transition struct {
	Strength float64
	Duration float64
	Steps    int
	FPS      int
}

func (Transition) effect()      {}
func (Transition) Name() string { return "transition" }

// Intensities returns the blur radius of every sub-interval.
func (e Transition) Intensities() []float64 {
	out := make([]float64, 0, e.Steps)
	for i := 0; i < e.Steps; i++ {
		out = append(out, e.Strength*float64(e.Steps-i)/float64(e.Steps))
	}
	return out
}

func (e Transition) Apply(s Stream) (Stream, error) {
	if e.Steps < 1 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "steps", Value: float64(e.Steps), Reason: "must be >= 1"}
	}
	if e.FPS <= 0 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "fps", Value: float64(e.FPS), Reason: "must be > 0"}
	}
	window := e.Duration
	if s.Info.Duration > 0 && window > s.Info.Duration {
		window = s.Info.Duration
	}
	if window <= 0 || e.Strength <= 0 {
		return s, nil
	}

	withRemainder := s.Info.Duration <= 0 || s.Info.Duration > window
	parts := e.Steps
	if withRemainder {
		parts++
	}
	split := ffmpeg.FilterMultiOutput([]*ffmpeg.Stream{s.Video}, "split", ffmpeg.Args{strconv.Itoa(parts)})

	step := window / float64(e.Steps)
	segs := make([]*ffmpeg.Stream, 0, parts)
	for i, radius := range e.Intensities() {
		start := float64(i) * step
		end := start + step
		if i == e.Steps-1 {
			end = window
		}
		seg := split.Get(strconv.Itoa(i)).
			Filter("trim", nil, ffmpeg.KwArgs{"start": seconds(start), "end": seconds(end)}).
			Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"}).
			Filter("boxblur", nil, ffmpeg.KwArgs{"luma_radius": fmtFloat(radius), "luma_power": "1"})
		segs = append(segs, seg)
	}
	if withRemainder {
		rest := split.Get(strconv.Itoa(e.Steps)).
			Filter("trim", nil, ffmpeg.KwArgs{"start": seconds(window)}).
			Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
		segs = append(segs, rest)
	}

	out := s
	out.Video = ffmpeg.Concat(segs, ffmpeg.KwArgs{"v": 1, "a": 0}).
		Filter("fps", ffmpeg.Args{strconv.Itoa(e.FPS)})
	out.Info.FPS = float64(e.FPS)
	return out, nil
}

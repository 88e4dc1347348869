package effects

import (
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// AudioNormalization levels speech for mobile playback: loudness
// normalisation, then compression, then an 80 Hz high-pass and a de-esser.
// Normalisation runs first so the compressor sees the normalised level.
type AudioNormalization struct {
	TargetLUFS float64
	PeakLimit  float64
}

func (AudioNormalization) effect()      {}
func (AudioNormalization) Name() string { return "audio" }

const loudnessRange = "11"

var compressor = ffmpeg.KwArgs{
	"threshold": "-18dB",
	"ratio":     "3",
	"attack":    "20",
	"release":   "250",
	"makeup":    "2",
}

func (e AudioNormalization) Apply(s Stream) (Stream, error) {
	if e.TargetLUFS < -70 || e.TargetLUFS > -5 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "target_lufs", Value: e.TargetLUFS, Reason: "must be within [-70, -5]"}
	}
	if e.PeakLimit < -9 || e.PeakLimit > 0 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "peak_limit", Value: e.PeakLimit, Reason: "must be within [-9, 0]"}
	}
	if s.Audio == nil {
		return s, nil
	}
	out := s
	out.Audio = s.Audio.
		Filter("loudnorm", nil, ffmpeg.KwArgs{
			"I":   fmtFloat(e.TargetLUFS),
			"TP":  fmtFloat(e.PeakLimit),
			"LRA": loudnessRange,
		}).
		Filter("acompressor", nil, compressor).
		Filter("highpass", nil, ffmpeg.KwArgs{"f": "80"}).
		Filter("deesser", nil)
	return out, nil
}

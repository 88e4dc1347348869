package effects

import (
	"fmt"
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vclip/internal/types"
)

// Stream is the declarative input of one effect: the video and audio
// sub-streams of a filter graph plus what is known about the media.
// Audio is nil when the source has no audio track.
type Stream struct {
	Video *ffmpeg.Stream
	Audio *ffmpeg.Stream
	Info  types.MediaInfo
}

// Effect is one transformation over a Stream. Effects hold only the
// parameters they were built with, so the same value can be applied to any
// number of streams. The set of effects is closed to this package.
type Effect interface {
	Name() string
	Apply(s Stream) (Stream, error)
	effect()
}

// ConstraintError reports an effect parameter the rendering engine cannot
// honour. Values are rejected rather than clamped.
type ConstraintError struct {
	Effect string
	Param  string
	Value  float64
	Reason string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s: %s=%s %s", e.Effect, e.Param, fmtFloat(e.Value), e.Reason)
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// seconds formats a timestamp for trim-style filters with millisecond
// precision.
func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// optionValue escapes a filter option value for the option level of the
// filtergraph syntax. ffmpeg-go escapes the graph level on its own but
// leaves option values untouched.
func optionValue(v string) string {
	return optionEscaper.Replace(v)
}

var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)

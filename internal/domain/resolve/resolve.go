package resolve

import (
	"fmt"
	"strings"

	"github.com/forPelevin/vclip/internal/types"
)

// InvalidRangeError reports a candidate whose segment indices are inverted or
// fall outside the transcript.
type InvalidRangeError struct {
	Start    int
	End      int
	Segments int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid segment range [%d, %d] for %d segments", e.Start, e.End, e.Segments)
}

// Resolve maps an index-range candidate onto absolute media time and slices
// the covered speech into clip-local time. It is pure: identical inputs give
// identical output, which cached selections rely on.
func Resolve(c types.ShortCandidate, sp types.Speech) (types.ResolvedShort, error) {
	n := len(sp.Segments)
	if c.StartSegmentIndex < 0 || c.EndSegmentIndex < c.StartSegmentIndex || c.EndSegmentIndex >= n {
		return types.ResolvedShort{}, &InvalidRangeError{Start: c.StartSegmentIndex, End: c.EndSegmentIndex, Segments: n}
	}

	start := sp.Segments[c.StartSegmentIndex].Start
	end := sp.Segments[c.EndSegmentIndex].End

	src := sp.Segments[c.StartSegmentIndex : c.EndSegmentIndex+1]
	local := make([]types.SpeechSegment, 0, len(src))
	parts := make([]string, 0, len(src))
	for _, s := range src {
		local = append(local, types.SpeechSegment{
			Start: nonNegative(s.Start - start),
			End:   nonNegative(s.End - start),
			Text:  s.Text,
		})
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}

	return types.ResolvedShort{
		ShortCandidate: c,
		Start:          start,
		End:            end,
		Speech:         local,
		Transcript:     strings.TrimSpace(strings.Join(parts, " ")),
	}, nil
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

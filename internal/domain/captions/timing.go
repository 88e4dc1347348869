package captions

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// MinWordSplit is the shortest span that is split into per-word timings.
// Anything shorter is shown as a single unit.
const MinWordSplit = 0.3

// ErrEmptyText is returned for segments with no words. Callers skip the
// segment; it is not a clip failure.
var ErrEmptyText = errors.New("caption text is empty")

type WordTiming struct {
	Word  string
	Start float64
	End   float64
}

// Timings distributes [start, end] over the words of text proportionally to
// their weight. The result covers the span exactly: the first word starts at
// start and the last word ends at end.
func Timings(text string, start, end float64) ([]WordTiming, error) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	if end-start < MinWordSplit || len(words) == 1 {
		return []WordTiming{{Word: strings.Join(words, " "), Start: start, End: end}}, nil
	}

	weights := make([]float64, len(words))
	total := 0.0
	for i, w := range words {
		weights[i] = wordWeight(w)
		total += weights[i]
	}

	span := end - start
	out := make([]WordTiming, len(words))
	cursor := start
	for i, w := range words {
		wEnd := cursor + span*weights[i]/total
		if i == len(words)-1 {
			wEnd = end
		}
		out[i] = WordTiming{Word: w, Start: cursor, End: wEnd}
		cursor = wEnd
	}
	return out, nil
}

func wordWeight(w string) float64 {
	core := strings.TrimRightFunc(w, unicode.IsPunct)
	weight := 1.0 + 0.08*float64(len([]rune(core)))
	if strings.IndexFunc(w, unicode.IsPunct) >= 0 {
		weight += 0.1
	}
	return weight
}

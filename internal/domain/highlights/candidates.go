package highlights

import (
	"sort"
	"strings"
	"time"

	"github.com/forPelevin/vclip/internal/domain/captions"
	"github.com/forPelevin/vclip/internal/types"
)

// Range is a scored window of consecutive speech segments. Indices are
// inclusive.
type Range struct {
	StartIndex int
	EndIndex   int
	Start      float64
	End        float64
	Text       string
	Info       float64
	Hook       float64
}

func (r Range) Score() float64 {
	s := r.Info + r.Hook
	if endsThought(r.Text) {
		s += 0.5
	}
	return s
}

const maxRanges = 2000

// BuildRanges enumerates segment windows whose duration lies in
// [minDur, maxDur].
func BuildRanges(sp types.Speech, minDur, maxDur time.Duration) []Range {
	if minDur <= 0 {
		minDur = time.Second
	}
	if maxDur <= 0 || maxDur < minDur {
		return nil
	}
	segs := sp.Segments
	var out []Range
	for i := range segs {
		var parts []string
		for j := i; j < len(segs); j++ {
			if t := strings.TrimSpace(segs[j].Text); t != "" {
				parts = append(parts, t)
			}
			win := dur(segs[j].End - segs[i].Start)
			if win > maxDur {
				break
			}
			if win < minDur || len(parts) == 0 {
				continue
			}
			text := strings.Join(parts, " ")
			info, hook := Score(text)
			out = append(out, Range{
				StartIndex: i, EndIndex: j,
				Start: segs[i].Start, End: segs[j].End,
				Text: text, Info: info, Hook: hook,
			})
			if len(out) >= maxRanges {
				return out
			}
		}
	}
	return out
}

// Fallback picks up to n non-overlapping ranges by score and turns them into
// candidates in timeline order. It is deterministic for a given input.
func Fallback(sp types.Speech, n int, minDur, maxDur time.Duration) []types.ShortCandidate {
	if n <= 0 {
		return nil
	}
	ranges := BuildRanges(sp, minDur, maxDur)
	sort.SliceStable(ranges, func(i, j int) bool {
		si, sj := ranges[i].Score(), ranges[j].Score()
		if si == sj {
			return ranges[i].StartIndex < ranges[j].StartIndex
		}
		return si > sj
	})

	picked := make([]Range, 0, n)
	for _, r := range ranges {
		if len(picked) >= n {
			break
		}
		if overlaps(picked, r) {
			continue
		}
		picked = append(picked, r)
	}
	sort.Slice(picked, func(i, j int) bool { return picked[i].StartIndex < picked[j].StartIndex })

	out := make([]types.ShortCandidate, 0, len(picked))
	for _, r := range picked {
		out = append(out, types.ShortCandidate{
			StartSegmentIndex: r.StartIndex,
			EndSegmentIndex:   r.EndIndex,
			Title:             fallbackTitle(r.Text),
			Description:       r.Text,
			Tags:              []string{},
			Reason:            "fallback",
		})
	}
	return out
}

func overlaps(picked []Range, r Range) bool {
	for _, p := range picked {
		if r.StartIndex <= p.EndIndex && r.EndIndex >= p.StartIndex {
			return true
		}
	}
	return false
}

func fallbackTitle(text string) string {
	title, _ := captions.Wrap(text, 30)
	if title == "" {
		return "Highlight"
	}
	return title
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }

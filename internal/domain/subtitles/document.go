package subtitles

import (
	"strings"

	"github.com/forPelevin/vclip/internal/domain/captions"
	"github.com/forPelevin/vclip/internal/types"
)

// Style controls how captions look on the canvas. Colours are "#RRGGBB".
type Style struct {
	Font            string
	Size            int
	Color           string
	DimColor        string
	HighlightColor  string
	OutlineColor    string
	Outline         float64
	Shadow          float64
	MarginV         int
	Alignment       int
	PlayResX        int
	PlayResY        int
	MaxCharsPerLine int
	WordHighlight   bool
}

// CaptionEvent is one timed caption. Text is already laid out and carries
// highlight markup.
type CaptionEvent struct {
	StartMS int64
	EndMS   int64
	Text    string
}

type Document struct {
	Style  Style
	Events []CaptionEvent
}

// Build turns clip-local speech segments into a caption document. With word
// highlighting enabled every word gets its own event showing the whole
// segment with that word highlighted; otherwise there is one event per
// segment. Segments without text are skipped and counted.
func Build(segments []types.SpeechSegment, st Style) (Document, int) {
	doc := Document{Style: st}
	skipped := 0
	for _, seg := range segments {
		if seg.End <= seg.Start {
			skipped++
			continue
		}
		if !st.WordHighlight {
			if strings.TrimSpace(seg.Text) == "" {
				skipped++
				continue
			}
			doc.Events = append(doc.Events, CaptionEvent{
				StartMS: toMS(seg.Start),
				EndMS:   toMS(seg.End),
				Text:    layout(strings.Fields(seg.Text), -1, st),
			})
			continue
		}

		timings, err := captions.Timings(seg.Text, seg.Start, seg.End)
		if err != nil {
			skipped++
			continue
		}
		words := strings.Fields(seg.Text)
		if len(timings) == 1 {
			// Below the split floor the segment is shown without a highlight.
			doc.Events = append(doc.Events, CaptionEvent{
				StartMS: toMS(timings[0].Start),
				EndMS:   toMS(timings[0].End),
				Text:    layout(words, -1, st),
			})
			continue
		}
		for i, wt := range timings {
			doc.Events = append(doc.Events, CaptionEvent{
				StartMS: toMS(wt.Start),
				EndMS:   toMS(wt.End),
				Text:    layout(words, i, st),
			})
		}
	}
	return doc, skipped
}

// layout wraps words into at most two lines and marks word hl. Words cut off
// by the wrapper are represented by the trailing ellipsis token, which takes
// the highlight while they are spoken. hl < 0 disables highlighting.
func layout(words []string, hl int, st Style) string {
	l1, l2 := captions.Wrap(strings.Join(words, " "), st.MaxCharsPerLine)
	lines := [][]string{strings.Fields(l1)}
	if l2 != "" {
		lines = append(lines, strings.Fields(l2))
	}

	shown := 0
	for _, ln := range lines {
		shown += len(ln)
	}
	if hl >= shown {
		hl = shown - 1
	}

	dim := tagColor(st.DimColor)
	hi := tagColor(st.HighlightColor)

	var b strings.Builder
	idx := 0
	for li, ln := range lines {
		if li > 0 {
			b.WriteString(`\N`)
		}
		for wi, w := range ln {
			if wi > 0 {
				b.WriteString(" ")
			}
			switch {
			case hl < 0:
				b.WriteString(sanitizeASS(w))
			case idx == hl:
				b.WriteString(`{\1c` + hi + `}` + sanitizeASS(w))
			default:
				b.WriteString(`{\1c` + dim + `}` + sanitizeASS(w))
			}
			idx++
		}
	}
	return b.String()
}

func toMS(sec float64) int64 {
	if sec < 0 {
		return 0
	}
	return int64(sec*1000 + 0.5)
}

package subtitles

import (
	"strings"
	"testing"

	"github.com/forPelevin/vclip/internal/types"
)

func testStyle() Style {
	return Style{
		Font:            "Roboto",
		Size:            72,
		Color:           "#FFFFFF",
		DimColor:        "#BBBBBB",
		HighlightColor:  "#FFD200",
		OutlineColor:    "#000000",
		Outline:         4,
		Shadow:          1,
		MarginV:         420,
		Alignment:       2,
		PlayResX:        1080,
		PlayResY:        1920,
		MaxCharsPerLine: 16,
		WordHighlight:   true,
	}
}

func TestBuild_OneEventPerWord(t *testing.T) {
	segs := []types.SpeechSegment{
		{Start: 0, End: 4, Text: "Build three things fast"},
		{Start: 4, End: 5, Text: "   "},
		{Start: 5, End: 5.2, Text: "ok then"},
	}
	doc, skipped := Build(segs, testStyle())
	if skipped != 1 {
		t.Fatalf("expected 1 skipped segment, got %d", skipped)
	}
	if len(doc.Events) != 5 {
		t.Fatalf("expected 4 word events + 1 floor event, got %d", len(doc.Events))
	}
	if doc.Events[0].StartMS != 0 || doc.Events[3].EndMS != 4000 {
		t.Fatalf("unexpected event span %d..%d", doc.Events[0].StartMS, doc.Events[3].EndMS)
	}
	for i := 1; i < 4; i++ {
		if doc.Events[i].StartMS != doc.Events[i-1].EndMS {
			t.Fatalf("events %d and %d are not contiguous", i-1, i)
		}
	}

	hi := tagColor("#FFD200")
	second := doc.Events[1].Text
	if !strings.Contains(second, `{\1c`+hi+`}three`) {
		t.Fatalf("expected second word highlighted, got %q", second)
	}
	if strings.Contains(second, `{\1c`+hi+`}Build`) {
		t.Fatalf("expected first word dimmed, got %q", second)
	}
	if !strings.Contains(second, `\N`) {
		t.Fatalf("expected two-line layout at 16 chars, got %q", second)
	}
	if strings.Contains(doc.Events[4].Text, `\1c`) {
		t.Fatalf("expected floor event without highlight, got %q", doc.Events[4].Text)
	}
}

func TestBuild_SegmentMode(t *testing.T) {
	st := testStyle()
	st.WordHighlight = false
	doc, _ := Build([]types.SpeechSegment{
		{Start: 1, End: 2.5, Text: "hello world"},
		{Start: 3, End: 4, Text: "again"},
	}, st)
	if len(doc.Events) != 2 {
		t.Fatalf("expected one event per segment, got %d", len(doc.Events))
	}
	if doc.Events[0].Text != "hello world" {
		t.Fatalf("unexpected text %q", doc.Events[0].Text)
	}
}

func TestBuild_TruncatedWordsHighlightEllipsis(t *testing.T) {
	st := testStyle()
	st.MaxCharsPerLine = 6
	doc, _ := Build([]types.SpeechSegment{{Start: 0, End: 6, Text: "aa bb cc dd ee ff"}}, st)
	if len(doc.Events) != 6 {
		t.Fatalf("expected 6 events, got %d", len(doc.Events))
	}
	last := doc.Events[5].Text
	if !strings.Contains(last, `{\1c`+tagColor(st.HighlightColor)+`}cc dd…`) &&
		!strings.Contains(last, `{\1c`+tagColor(st.HighlightColor)+`}dd…`) {
		t.Fatalf("expected ellipsis token highlighted for hidden word, got %q", last)
	}
}

func TestDocument_ASS(t *testing.T) {
	doc, _ := Build([]types.SpeechSegment{{Start: 61.234, End: 62, Text: "a {b} c"}}, testStyle())
	ass := doc.ASS()
	for _, want := range []string{
		"PlayResX: 1080",
		"PlayResY: 1920",
		"Style: Caption,Roboto,72,&H00FFFFFF,&H0000D2FF,",
		"Dialogue: 0,0:01:01.23,",
		"(b)",
	} {
		if !strings.Contains(ass, want) {
			t.Fatalf("expected ASS to contain %q, got:\n%s", want, ass)
		}
	}
}

func TestAssTime_Format(t *testing.T) {
	if got := assTime(0); got != "0:00:00.00" {
		t.Fatalf("unexpected assTime: %s", got)
	}
}

func TestAssColor(t *testing.T) {
	if got := assColor("#FFD200", 0); got != "&H0000D2FF" {
		t.Fatalf("assColor = %s", got)
	}
	if got := assColor("nope", 0x10); got != "&H10FFFFFF" {
		t.Fatalf("assColor fallback = %s", got)
	}
	if got := tagColor("#112233"); got != "&H332211&" {
		t.Fatalf("tagColor = %s", got)
	}
}

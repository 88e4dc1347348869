package resolve

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/forPelevin/vclip/internal/types"
)

func testSpeech(n int) types.Speech {
	sp := types.Speech{Language: "en", DurationSeconds: 130}
	t := 0.0
	for i := 0; i < n; i++ {
		sp.Segments = append(sp.Segments, types.SpeechSegment{
			Start: t,
			End:   t + 2.5,
			Text:  fmt.Sprintf(" segment %d ", i),
		})
		t += 3
	}
	return sp
}

func TestResolve_ValidRanges(t *testing.T) {
	sp := testSpeech(12)
	for s := 0; s < len(sp.Segments); s++ {
		for e := s; e < len(sp.Segments); e++ {
			r, err := Resolve(types.ShortCandidate{StartSegmentIndex: s, EndSegmentIndex: e}, sp)
			if err != nil {
				t.Fatalf("[%d,%d]: unexpected error: %v", s, e, err)
			}
			if r.End <= r.Start {
				t.Fatalf("[%d,%d]: end %.2f <= start %.2f", s, e, r.End, r.Start)
			}
			if len(r.Speech) != e-s+1 {
				t.Fatalf("[%d,%d]: expected %d segments, got %d", s, e, e-s+1, len(r.Speech))
			}
			last := r.Speech[len(r.Speech)-1]
			if math.Abs(last.End-(r.End-r.Start)) > 1e-9 {
				t.Fatalf("[%d,%d]: last local end %.6f, want %.6f", s, e, last.End, r.End-r.Start)
			}
			if r.Speech[0].Start != 0 {
				t.Fatalf("[%d,%d]: first local start %.6f, want 0", s, e, r.Speech[0].Start)
			}
		}
	}
}

func TestResolve_Rejects(t *testing.T) {
	sp := testSpeech(5)
	cases := []struct {
		name       string
		start, end int
	}{
		{"inverted", 3, 2},
		{"negative start", -1, 2},
		{"end out of range", 1, 5},
		{"both out of range", 7, 9},
		{"empty speech", 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := sp
			if tc.name == "empty speech" {
				in = types.Speech{}
			}
			_, err := Resolve(types.ShortCandidate{StartSegmentIndex: tc.start, EndSegmentIndex: tc.end}, in)
			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected InvalidRangeError, got %v", err)
			}
		})
	}
}

func TestResolve_Scenario(t *testing.T) {
	sp := testSpeech(40)
	sp.Segments[5].Start = 12.3
	sp.Segments[9].End = 44.0

	r, err := Resolve(types.ShortCandidate{StartSegmentIndex: 5, EndSegmentIndex: 9, Title: "t"}, sp)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Start != 12.3 || r.End != 44.0 {
		t.Fatalf("unexpected span [%.2f, %.2f]", r.Start, r.End)
	}
	if math.Abs(r.Duration()-31.7) > 1e-9 {
		t.Fatalf("unexpected duration %.4f", r.Duration())
	}
	if r.Transcript != "segment 5 segment 6 segment 7 segment 8 segment 9" {
		t.Fatalf("unexpected transcript %q", r.Transcript)
	}
	if r.Title != "t" {
		t.Fatalf("candidate metadata not carried over")
	}
}

func TestResolve_ClipsLocalTimeAtZero(t *testing.T) {
	sp := types.Speech{Segments: []types.SpeechSegment{
		{Start: 10, End: 12, Text: "a"},
		{Start: 9.5, End: 14, Text: "b"},
	}}
	r, err := Resolve(types.ShortCandidate{StartSegmentIndex: 0, EndSegmentIndex: 1}, sp)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Speech[1].Start != 0 {
		t.Fatalf("expected overlapping segment start clipped to 0, got %.2f", r.Speech[1].Start)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	sp := testSpeech(8)
	c := types.ShortCandidate{StartSegmentIndex: 2, EndSegmentIndex: 6}
	a, _ := Resolve(c, sp)
	b, _ := Resolve(c, sp)
	if fmt.Sprintf("%+v", a) != fmt.Sprintf("%+v", b) {
		t.Fatalf("resolve is not deterministic")
	}
}

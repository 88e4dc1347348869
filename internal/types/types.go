package types

// SpeechSegment is one transcribed utterance. Times are seconds from the
// start of the source media.
type SpeechSegment struct {
	Start float64 `json:"start_time"`
	End   float64 `json:"end_time"`
	Text  string  `json:"text"`
}

type Speech struct {
	Language        string          `json:"language"`
	DurationSeconds float64         `json:"duration_seconds"`
	Segments        []SpeechSegment `json:"segments"`
}

// ShortCandidate is a segment-index range proposed by the selection service.
// Both indices are inclusive.
type ShortCandidate struct {
	StartSegmentIndex int      `json:"start_segment_index"`
	EndSegmentIndex   int      `json:"end_segment_index"`
	Title             string   `json:"title"`
	SubscribeSubtitle string   `json:"subscribe_subtitle,omitempty"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	EstimatedDuration string   `json:"estimated_duration,omitempty"`
	Reason            string   `json:"reason,omitempty"`
}

// ResolvedShort is a candidate mapped onto absolute media time. Speech holds
// the covered segments in clip-local time.
type ResolvedShort struct {
	ShortCandidate
	Start      float64         `json:"start_time"`
	End        float64         `json:"end_time"`
	Speech     []SpeechSegment `json:"speech"`
	Transcript string          `json:"full_transcript"`
}

func (r ResolvedShort) Duration() float64 { return r.End - r.Start }

type MediaInfo struct {
	Width    int
	Height   int
	Duration float64
	FPS      float64
	HasAudio bool
}

type UploadMeta struct {
	Title       string
	Description string
	Tags        []string
	Privacy     string
}

type Manifest struct {
	Input     string         `json:"input"`
	Strategy  string         `json:"strategy"`
	Requested int            `json:"requested"`
	Rendered  int            `json:"rendered"`
	Shorts    []ManifestClip `json:"shorts"`
}

type ManifestClip struct {
	ID          string   `json:"id"`
	StartIndex  int      `json:"start_segment_index"`
	EndIndex    int      `json:"end_segment_index"`
	StartSec    float64  `json:"start_sec"`
	EndSec      float64  `json:"end_sec"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Text        string   `json:"text"`
	File        string   `json:"file"`
	Subtitles   string   `json:"subtitles,omitempty"`
	Cached      bool     `json:"cached,omitempty"`
	VideoID     string   `json:"video_id,omitempty"`
}

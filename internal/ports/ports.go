package ports

import (
	"context"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vclip/internal/types"
)

type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error
	// Cut re-encodes [start, end) seconds of inMP4 into outMP4 starting at 0.
	Cut(ctx context.Context, inMP4 string, start, end float64, outMP4 string) error
	Render(ctx context.Context, graph *ffmpeg.Stream) error
	Probe(ctx context.Context, path string) (types.MediaInfo, error)
}

type ASR interface {
	Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Speech, error)
}

// Selector proposes short candidates as segment-index ranges. Returned
// indices are not trusted by callers.
type Selector interface {
	Select(
		ctx context.Context,
		sp types.Speech,
		shortsN int,
		minDur time.Duration,
		maxDur time.Duration,
	) ([]types.ShortCandidate, error)
}

type Uploader interface {
	Upload(ctx context.Context, path string, meta types.UploadMeta) (videoID string, err error)
}

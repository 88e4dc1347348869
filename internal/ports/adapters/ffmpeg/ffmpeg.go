package ffmpeg

import (
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vclip/internal/types"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, inMP4, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", inMP4,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg extract audio: %s", tail(b))
	}
	return nil
}

func (a *Adapter) Cut(ctx context.Context, inMP4 string, start, end float64, outMP4 string) error {
	if end <= start {
		return errors.Errorf("cut: end %.3f must be after start %.3f", end, start)
	}
	graph := ffmpeggo.Input(inMP4, ffmpeggo.KwArgs{"ss": fmtSeconds(start)}).
		Output(outMP4, ffmpeggo.KwArgs{
			"t":                 fmtSeconds(end - start),
			"c:v":               "libx264",
			"preset":            "veryfast",
			"crf":               "18",
			"c:a":               "aac",
			"b:a":               "192k",
			"avoid_negative_ts": "make_zero",
		}).
		OverWriteOutput()
	return a.Render(ctx, graph)
}

// Render runs a filter graph built with ffmpeg-go through the configured
// ffmpeg binary.
func (a *Adapter) Render(ctx context.Context, graph *ffmpeggo.Stream) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg, graph.GetArgs()...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "ffmpeg render: %s", tail(b))
	}
	return nil
}

func (a *Adapter) Probe(ctx context.Context, path string) (types.MediaInfo, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	b, err := cmd.Output()
	if err != nil {
		return types.MediaInfo{}, errors.Wrapf(err, "ffprobe %s", path)
	}
	return parseProbe(b)
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func parseProbe(b []byte) (types.MediaInfo, error) {
	var p probeOutput
	if err := json.Unmarshal(b, &p); err != nil {
		return types.MediaInfo{}, errors.Wrap(err, "parse ffprobe output")
	}
	var info types.MediaInfo
	found := false
	for _, s := range p.Streams {
		switch s.CodecType {
		case "video":
			if found {
				continue
			}
			found = true
			info.Width, info.Height = s.Width, s.Height
			info.FPS = parseRate(s.RFrameRate)
			info.Duration = parseFloat(s.Duration)
		case "audio":
			info.HasAudio = true
		}
	}
	if !found {
		return types.MediaInfo{}, errors.New("no video stream found")
	}
	if d := parseFloat(p.Format.Duration); d > 0 {
		info.Duration = d
	}
	return info, nil
}

func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return parseFloat(s)
	}
	n, d := parseFloat(num), parseFloat(den)
	if d == 0 {
		return 0
	}
	return n / d
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// tail keeps the last lines of ffmpeg's output, where the actual error is.
func tail(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) > 15 {
		lines = lines[len(lines)-15:]
	}
	return strings.Join(lines, "\n")
}

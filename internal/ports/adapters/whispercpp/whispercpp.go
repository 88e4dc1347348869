package whispercpp

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/forPelevin/vclip/internal/types"
)

type Adapter struct {
	bin   string
	model string
}

func New(binPath, modelPath string) *Adapter {
	if binPath == "" {
		binPath = "whisper-cli"
	}
	return &Adapter{bin: binPath, model: modelPath}
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Speech, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-l", "auto",
		"-oj",
		"-of", outPrefix,
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Speech{}, errors.Wrapf(err, "whisper.cpp failed: %s", string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Speech{}, errors.Wrap(err, "read whisper output")
	}
	return parseOutput(jb)
}

// output is the subset of whisper.cpp's -oj document we use. Offsets are
// milliseconds.
type output struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseOutput(b []byte) (types.Speech, error) {
	var out output
	if err := json.Unmarshal(b, &out); err != nil {
		return types.Speech{}, errors.Wrap(err, "parse whisper output")
	}
	sp := types.Speech{Language: out.Result.Language}
	for _, t := range out.Transcription {
		text := strings.TrimSpace(t.Text)
		start := float64(t.Offsets.From) / 1000
		end := float64(t.Offsets.To) / 1000
		if text == "" || end <= start {
			continue
		}
		sp.Segments = append(sp.Segments, types.SpeechSegment{Start: start, End: end, Text: text})
	}
	sort.SliceStable(sp.Segments, func(i, j int) bool { return sp.Segments[i].Start < sp.Segments[j].Start })
	if n := len(sp.Segments); n > 0 {
		sp.DurationSeconds = sp.Segments[n-1].End
	}
	return sp, nil
}

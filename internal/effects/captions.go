package effects

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/forPelevin/vclip/internal/domain/subtitles"
	"github.com/forPelevin/vclip/internal/types"
)

// CaptionOverlay lays out and times the clip's speech, writes it as an ASS
// document to Path and burns it into the video.
type CaptionOverlay struct {
	Speech   []types.SpeechSegment
	Style    subtitles.Style
	FontsDir string
	Path     string
	Log      *zap.SugaredLogger
}

func (CaptionOverlay) effect()      {}
func (CaptionOverlay) Name() string { return "captions" }

func (e CaptionOverlay) Apply(s Stream) (Stream, error) {
	if e.Path == "" {
		return Stream{}, errors.New("captions: subtitle path is empty")
	}
	doc, skipped := subtitles.Build(e.Speech, e.Style)
	if skipped > 0 && e.Log != nil {
		e.Log.Debugw("caption segments without text skipped", "count", skipped, "file", e.Path)
	}
	if len(doc.Events) == 0 {
		return s, nil
	}
	if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
		return Stream{}, errors.Wrap(err, "captions: create subtitle dir")
	}
	if err := os.WriteFile(e.Path, []byte(doc.ASS()), 0o644); err != nil {
		return Stream{}, errors.Wrap(err, "captions: write subtitles")
	}

	kw := ffmpeg.KwArgs{"filename": optionValue(e.Path)}
	if e.FontsDir != "" {
		kw["fontsdir"] = optionValue(e.FontsDir)
	}
	out := s
	out.Video = s.Video.Filter("subtitles", nil, kw)
	return out, nil
}

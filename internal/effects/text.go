package effects

import (
	"strconv"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/forPelevin/vclip/internal/domain/captions"
)

type Anchor string

const (
	AnchorTop    Anchor = "top"
	AnchorBottom Anchor = "bottom"
)

// TextOverlay draws a centred text block at a fixed offset from the top or
// bottom edge, on top of a soft 2px shadow copy.
type TextOverlay struct {
	Text            string
	Anchor          Anchor
	FontFile        string
	Size            int
	Color           string
	Offset          int
	MaxCharsPerLine int
}

func (TextOverlay) effect()      {}
func (TextOverlay) Name() string { return "text" }

const (
	shadowColor  = "black@0.4"
	shadowOffset = 2
	outlineWidth = 3
)

// Lines returns the text as drawn, wrapped to at most two lines.
func (e TextOverlay) Lines() string {
	text := strings.Join(strings.Fields(e.Text), " ")
	if e.MaxCharsPerLine <= 0 {
		return text
	}
	l1, l2 := captions.Wrap(text, e.MaxCharsPerLine)
	if l2 == "" {
		return l1
	}
	return l1 + "\n" + l2
}

func (e TextOverlay) Apply(s Stream) (Stream, error) {
	if e.Size <= 0 {
		return Stream{}, &ConstraintError{Effect: e.Name(), Param: "size", Value: float64(e.Size), Reason: "must be > 0"}
	}
	text := e.Lines()
	if text == "" {
		return s, nil
	}

	y := strconv.Itoa(e.Offset)
	if e.Anchor == AnchorBottom {
		y = "h-text_h-" + strconv.Itoa(e.Offset)
	}
	color := e.Color
	if color == "" {
		color = "white"
	}

	shadow := e.drawtext(text)
	shadow["fontcolor"] = shadowColor
	shadow["x"] = "(w-text_w)/2+" + strconv.Itoa(shadowOffset)
	shadow["y"] = y + "+" + strconv.Itoa(shadowOffset)

	main := e.drawtext(text)
	main["fontcolor"] = color
	main["borderw"] = strconv.Itoa(outlineWidth)
	main["bordercolor"] = "black"
	main["x"] = "(w-text_w)/2"
	main["y"] = y

	out := s
	out.Video = s.Video.
		Filter("drawtext", nil, shadow).
		Filter("drawtext", nil, main)
	return out, nil
}

func (e TextOverlay) drawtext(text string) ffmpeg.KwArgs {
	kw := ffmpeg.KwArgs{
		"text":         optionValue(text),
		"fontsize":     strconv.Itoa(e.Size),
		"expansion":    "none",
		"line_spacing": "8",
	}
	if e.FontFile != "" {
		kw["fontfile"] = optionValue(e.FontFile)
	}
	return kw
}

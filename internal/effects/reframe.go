package effects

import (
	"math"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Reframe fits the source into a Width x Height canvas without cropping,
// padding the free axis with black bars.
type Reframe struct {
	Width  int
	Height int
}

func (Reframe) effect()      {}
func (Reframe) Name() string { return "reframe" }

// Geometry is the scaled content size and its offset inside the canvas.
type Geometry struct {
	ScaledW int
	ScaledH int
	PadX    int
	PadY    int
}

// ComputeGeometry fixes exactly one axis to the target and derives the other
// from the source aspect ratio, rounded to an even value. A source wider than
// the target is letterboxed, anything else is pillarboxed.
func ComputeGeometry(srcW, srcH, dstW, dstH int) (Geometry, error) {
	if srcW <= 0 || srcH <= 0 {
		return Geometry{}, &ConstraintError{Effect: "reframe", Param: "source", Value: float64(min(srcW, srcH)), Reason: "dimensions must be > 0"}
	}
	if dstW <= 0 || dstH <= 0 {
		return Geometry{}, &ConstraintError{Effect: "reframe", Param: "target", Value: float64(min(dstW, dstH)), Reason: "dimensions must be > 0"}
	}

	var g Geometry
	// compare srcW/srcH > dstW/dstH without floating point
	if int64(srcW)*int64(dstH) > int64(dstW)*int64(srcH) {
		g.ScaledW = dstW
		g.ScaledH = evenDerived(float64(dstW)*float64(srcH)/float64(srcW), dstH)
	} else {
		g.ScaledH = dstH
		g.ScaledW = evenDerived(float64(dstH)*float64(srcW)/float64(srcH), dstW)
	}
	g.PadX = (dstW - g.ScaledW) / 2
	g.PadY = (dstH - g.ScaledH) / 2
	return g, nil
}

func evenDerived(x float64, limit int) int {
	v := 2 * int(math.Round(x/2))
	if v < 2 {
		v = 2
	}
	if v > limit {
		v = limit
	}
	return v
}

func (e Reframe) Apply(s Stream) (Stream, error) {
	g, err := ComputeGeometry(s.Info.Width, s.Info.Height, e.Width, e.Height)
	if err != nil {
		return Stream{}, err
	}
	out := s
	out.Video = s.Video.
		Filter("scale", ffmpeg.Args{strconv.Itoa(g.ScaledW), strconv.Itoa(g.ScaledH)}).
		Filter("setsar", ffmpeg.Args{"1"}).
		Filter("pad", ffmpeg.Args{
			strconv.Itoa(e.Width), strconv.Itoa(e.Height),
			strconv.Itoa(g.PadX), strconv.Itoa(g.PadY),
		}, ffmpeg.KwArgs{"color": "black"})
	out.Info.Width = e.Width
	out.Info.Height = e.Height
	return out, nil
}

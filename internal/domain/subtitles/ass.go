package subtitles

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ASS serialises the document in Advanced SubStation Alpha format, the input
// of ffmpeg's subtitles filter.
func (d Document) ASS() string {
	var b strings.Builder
	b.WriteString(assHeader(d.Style))
	b.WriteString("\n\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ev := range d.Events {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(time.Duration(ev.StartMS) * time.Millisecond))
		b.WriteString(",")
		b.WriteString(assTime(time.Duration(ev.EndMS) * time.Millisecond))
		b.WriteString(",Caption,,0,0,0,,")
		b.WriteString(ev.Text)
		b.WriteString("\n")
	}
	return b.String()
}

func assHeader(st Style) string {
	primary := assColor(st.Color, 0)
	secondary := assColor(st.HighlightColor, 0)
	outline := assColor(st.OutlineColor, 0)
	back := assColor("#000000", 0x64)
	return strings.TrimSpace(fmt.Sprintf(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
WrapStyle: 2
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption,%s,%d,%s,%s,%s,%s,1,0,0,0,100,100,0,0,1,%s,%s,%d,60,60,%d,1`,
		st.PlayResX, st.PlayResY,
		st.Font, st.Size, primary, secondary, outline, back,
		fmtFloat(st.Outline), fmtFloat(st.Shadow), st.Alignment, st.MarginV,
	))
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

// assColor converts "#RRGGBB" into ASS "&HAABBGGRR". Unparseable input falls
// back to white.
func assColor(hex string, alpha uint8) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	v, err := strconv.ParseUint(h, 16, 32)
	if len(h) != 6 || err != nil {
		v = 0xFFFFFF
	}
	r := (v >> 16) & 0xFF
	g := (v >> 8) & 0xFF
	bl := v & 0xFF
	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, bl, g, r)
}

// tagColor is the inline override form "&HBBGGRR&".
func tagColor(hex string) string {
	c := assColor(hex, 0)
	return "&H" + c[4:] + "&"
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "/")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	return strings.TrimSpace(s)
}

func fmtFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

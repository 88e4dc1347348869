package captions

import "strings"

const ellipsis = "…"

// Wrap lays text out on at most two lines of maxChars runes each. Words are
// packed greedily; when they do not fit, line two is shortened at a word
// boundary and ends with an ellipsis. A single word that cannot fit on its own
// is hard-truncated. Wrap never fails: empty input or a non-positive budget
// yield two empty lines.
func Wrap(text string, maxChars int) (string, string) {
	words := strings.Fields(text)
	if len(words) == 0 || maxChars <= 0 {
		return "", ""
	}

	line1, rest := fill(words, maxChars)
	if len(rest) == 0 {
		return line1, ""
	}
	line2, rest := fill(rest, maxChars)
	if len(rest) == 0 {
		return line1, line2
	}
	return line1, shorten(line2, maxChars)
}

// fill packs words into one line and returns the unused words. An overlong
// first word is truncated and ends the line.
func fill(words []string, maxChars int) (string, []string) {
	first := words[0]
	if runeLen(first) > maxChars {
		return truncate(first, maxChars), words[1:]
	}
	line := first
	n := runeLen(first)
	i := 1
	for ; i < len(words); i++ {
		wl := runeLen(words[i])
		if n+1+wl > maxChars {
			break
		}
		line += " " + words[i]
		n += 1 + wl
	}
	return line, words[i:]
}

// shorten marks line as continued, dropping trailing words until the ellipsis
// fits. A line that already ends in an ellipsis is returned unchanged.
func shorten(line string, maxChars int) string {
	if strings.HasSuffix(line, ellipsis) {
		return line
	}
	words := strings.Fields(line)
	for len(words) > 0 {
		cand := strings.Join(words, " ") + ellipsis
		if runeLen(cand) <= maxChars {
			return cand
		}
		if len(words) == 1 {
			return truncate(words[0], maxChars)
		}
		words = words[:len(words)-1]
	}
	return ellipsis
}

func truncate(word string, maxChars int) string {
	r := []rune(word)
	keep := maxChars - 1
	if keep < 0 {
		keep = 0
	}
	if keep > len(r) {
		keep = len(r)
	}
	return string(r[:keep]) + ellipsis
}

func runeLen(s string) int { return len([]rune(s)) }

package layout

import "strings"

// Wrap breaks text into lines no wider than width according to measure.
// Newlines force a break, runs of whitespace collapse to one space, and a
// word wider than width is split between runes. Only a single glyph wider
// than width can produce an over-wide line.
func Wrap(text string, width float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			if line != "" {
				if cand := line + " " + word; measure(cand) <= width {
					line = cand
					continue
				}
				lines = append(lines, line)
				line = ""
			}
			if measure(word) <= width {
				line = word
				continue
			}
			chunks := breakWord(word, width, measure)
			lines = append(lines, chunks[:len(chunks)-1]...)
			line = chunks[len(chunks)-1]
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func breakWord(word string, width float64, measure func(string) float64) []string {
	var chunks []string
	var cur []rune
	for _, r := range word {
		if len(cur) > 0 && measure(string(cur)+string(r)) > width {
			chunks = append(chunks, string(cur))
			cur = cur[:0]
		}
		cur = append(cur, r)
	}
	return append(chunks, string(cur))
}

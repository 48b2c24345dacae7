package importer

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Mode selects how free text is split into candidates.
type Mode string

const (
	// ModeLines takes one candidate per line, comma or semicolon.
	ModeLines Mode = "lines"
	// ModeScan extracts digit runs embedded anywhere in the text.
	ModeScan Mode = "scan"
)

// minScanTokenLength is the shortest digit run ModeScan accepts.
const minScanTokenLength = 8

var scanToken = regexp.MustCompile(`\+?\d+`)

// ParseMode maps user input to a Mode. Empty input selects ModeLines.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeLines:
		return ModeLines, nil
	case ModeScan:
		return ModeScan, nil
	default:
		return "", fmt.Errorf("unknown parse mode %q", s)
	}
}

// Candidate is one raw number found in a text batch.
type Candidate struct {
	Index int
	Raw   string
	// Line is the 1-based source line.
	Line int
}

// Parse splits text into candidates. The sequence is lazy and can be ranged
// over any number of times with identical results. Empty items are dropped;
// repeated values are kept.
func Parse(text string, mode Mode) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		index := 0
		for lineNo, line := range lines(text) {
			for _, raw := range tokens(line, mode) {
				if !yield(Candidate{Index: index, Raw: raw, Line: lineNo}) {
					return
				}
				index++
			}
		}
	}
}

// lines yields each line with its 1-based number. "\r\n", "\n" and a lone
// "\r" all end a line.
func lines(text string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		lineNo := 1
		start := 0
		for i := 0; i < len(text); i++ {
			if text[i] != '\n' && text[i] != '\r' {
				continue
			}
			if !yield(lineNo, text[start:i]) {
				return
			}
			if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			lineNo++
			start = i + 1
		}
		if start < len(text) {
			yield(lineNo, text[start:])
		}
	}
}

func tokens(line string, mode Mode) []string {
	if mode == ModeScan {
		var out []string
		for _, match := range scanToken.FindAllString(line, -1) {
			if len(match) >= minScanTokenLength {
				out = append(out, match)
			}
		}
		return out
	}

	fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' })
	out := fields[:0]
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package chunk

import (
	"regexp"
	"strings"
)

// SentenceSplitter breaks a paragraph into sentences. The implementation is
// chosen when the Chunker is constructed and never swapped mid-run, so chunk
// boundaries stay stable for the duration of a run.
type SentenceSplitter interface {
	Split(text string) []string
}

// ProseSplitter segments text at sentence-ending punctuation while holding
// back on decimal numbers, single-letter initials, and common legal
// abbreviations. It is the default splitter.
type ProseSplitter struct{}

var _ SentenceSplitter = (*ProseSplitter)(nil)

// Multi-letter abbreviations that end with a period mid-sentence.
// Single-letter initials (U.S.C., A. Smith) are handled separately.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"no": true, "nos": true, "art": true, "sec": true, "secs": true,
	"para": true, "ch": true, "pt": true, "vol": true, "cir": true,
	"inc": true, "corp": true, "ltd": true, "co": true, "vs": true,
	"rev": true, "rul": true, "proc": true, "stat": true, "reg": true,
	"regs": true, "treas": true, "fed": true, "supp": true, "ann": true,
	"etc": true, "al": true, "seq": true, "cf": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "jun": true,
	"jul": true, "aug": true, "sep": true, "sept": true, "oct": true,
	"nov": true, "dec": true,
}

// Split returns the sentences of text in order. Every byte of input is
// preserved across the returned pieces apart from surrounding whitespace;
// text with no detectable boundary comes back as a single sentence.
func (ProseSplitter) Split(text string) []string {
	var out []string
	start := 0

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}

		// Absorb closing punctuation and terminator runs ("..."), ("?!").
		end := i + 1
		for end < len(text) && isCloser(text[end]) {
			end++
		}

		if end < len(text) && !isBoundary(text, i, end) {
			i = end - 1
			continue
		}

		if piece := strings.TrimSpace(text[start:end]); piece != "" {
			out = append(out, piece)
		}
		start = end
		i = end - 1
	}

	if rest := strings.TrimSpace(text[start:]); rest != "" {
		out = append(out, rest)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

func isCloser(b byte) bool {
	switch b {
	case '.', '!', '?', '"', '\'', ')', ']':
		return true
	}
	return false
}

// isBoundary reports whether the terminator at punct, whose punctuation run
// ends at end, closes a sentence.
func isBoundary(text string, punct, end int) bool {
	if text[punct] == '.' {
		// Decimal and section numbers: 1.61-1, 301.7701
		if punct > 0 && punct+1 < len(text) && isDigit(text[punct-1]) && isDigit(text[punct+1]) {
			return false
		}
		if w := wordBefore(text, punct); w != "" {
			if len(w) == 1 || abbreviations[strings.ToLower(w)] {
				return false
			}
		}
	}

	if end >= len(text) {
		return true
	}
	if text[end] != ' ' && text[end] != '\n' && text[end] != '\t' {
		return false
	}

	j := end
	for j < len(text) && (text[j] == ' ' || text[j] == '\n' || text[j] == '\t') {
		j++
	}
	if j == len(text) {
		return true
	}
	return isSentenceStart(text[j])
}

// wordBefore returns the run of letters immediately preceding position i.
func wordBefore(text string, i int) string {
	j := i
	for j > 0 && isLetter(text[j-1]) {
		j--
	}
	return text[j:i]
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// isSentenceStart reports whether b plausibly opens a sentence: an
// uppercase letter, a digit, opening punctuation, or the start of a
// multi-byte rune such as a section sign.
func isSentenceStart(b byte) bool {
	if b >= 'A' && b <= 'Z' {
		return true
	}
	if isDigit(b) {
		return true
	}
	switch b {
	case '"', '\'', '(', '[':
		return true
	}
	return b >= 0x80
}

// PunctSplitter is the fallback splitter: it cuts after every run of '.',
// '!', or '?' with no abbreviation awareness. Trailing text without a
// terminator is kept as a final sentence.
type PunctSplitter struct{}

var _ SentenceSplitter = (*PunctSplitter)(nil)

var terminatorRuns = regexp.MustCompile(`[^.!?]*[.!?]+`)

func (PunctSplitter) Split(text string) []string {
	locs := terminatorRuns.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []string{text}
	}

	out := make([]string, 0, len(locs)+1)
	last := 0
	for _, loc := range locs {
		if piece := strings.TrimSpace(text[loc[0]:loc[1]]); piece != "" {
			out = append(out, piece)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

package filters

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lueurxax/websift/internal/core/domain"
	apperrors "github.com/lueurxax/websift/internal/core/errors"
)

const (
	defaultMinSentences       = 5
	defaultMinWordsPerLine    = 3
	defaultMaxWordLength      = 1000
	defaultMinParagraphs      = 3
	defaultMinParagraphLength = 200

	citationNeeded = "[citation needed]"
	editMarker     = "[edit]"
	loremIpsum     = "lorem ipsum"
	javascript     = "javascript"
	curlyBracket   = "{"
	lineTrimSet    = " \t"
)

var (
	policyPhrases       = []string{"terms of use", "privacy policy", "cookie policy", "uses cookies", "use of cookies", "use cookies"}
	terminalPunctuation = NewRuneSet(".?!\"'")
)

// DefaultBadWords returns the fallback bad-word list.
func DefaultBadWords() []string {
	return []string{"porn", "xxx", "sex"}
}

// LineStages configures the optional line-level stages that run after the
// statistical checks of a kept document. Every stage is off in DefaultProfile.
//
// The quality stage drops boilerplate lines (citations, lines without terminal
// punctuation, javascript and policy notices) and rejects documents with
// lorem ipsum, curly brackets or too few remaining lines. The paragraph and
// bad-word stages see the text left by the quality stage when it is enabled.
type LineStages struct {
	Quality    bool
	Paragraphs bool
	BadWords   bool

	MinSentences       int
	MinWordsPerLine    int
	MaxWordLength      int
	MinParagraphs      int
	MinParagraphLength int
	// BadWordList is matched case-insensitively on word boundaries, in order.
	BadWordList []string
}

// DefaultLineStages returns the stage thresholds with every stage disabled.
func DefaultLineStages() LineStages {
	return LineStages{
		MinSentences:       defaultMinSentences,
		MinWordsPerLine:    defaultMinWordsPerLine,
		MaxWordLength:      defaultMaxWordLength,
		MinParagraphs:      defaultMinParagraphs,
		MinParagraphLength: defaultMinParagraphLength,
		BadWordList:        DefaultBadWords(),
	}
}

// Enabled reports whether any stage runs.
func (s LineStages) Enabled() bool {
	return s.Quality || s.Paragraphs || s.BadWords
}

func (s LineStages) validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"min_sentences", s.MinSentences},
		{"min_words_per_line", s.MinWordsPerLine},
		{"max_word_length", s.MaxWordLength},
		{"min_paragraphs", s.MinParagraphs},
		{"min_paragraph_length", s.MinParagraphLength},
	}

	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", apperrors.ErrInvalidProfile, c.name, c.value)
		}
	}

	if s.BadWords && len(s.BadWordList) == 0 {
		return fmt.Errorf("%w: bad-word stage enabled with an empty word list", apperrors.ErrInvalidProfile)
	}

	return nil
}

// checkLineStages runs the enabled stages in order: quality, paragraphs, bad words.
func checkLineStages(text string, s LineStages) (domain.Reason, bool) {
	if s.Quality {
		cleaned, reason, failed := cleanLines(text, s)
		if failed {
			return reason, true
		}

		text = cleaned
	}

	if s.Paragraphs {
		if reason, failed := checkParagraphs(text, s); failed {
			return reason, true
		}
	}

	if s.BadWords && containsBadWord(text, s.BadWordList) {
		return domain.ReasonBadWords, true
	}

	return "", false
}

// cleanLines keeps the lines that look like prose and returns them joined by
// "\n". Lorem ipsum and curly brackets in a kept candidate reject the whole
// document.
func cleanLines(text string, s LineStages) (string, domain.Reason, bool) {
	var kept []string

	for _, line := range newlineSplit(text) {
		line = strings.Trim(removeCitations(strings.Trim(line, lineTrimSet)), lineTrimSet)
		if line == "" {
			continue
		}

		if !wordsFit(line, s) {
			continue
		}

		if !endsSentence(line) {
			continue
		}

		lower := strings.ToLower(line)

		if strings.Contains(lower, loremIpsum) {
			return "", domain.ReasonLoremIpsum, true
		}

		if strings.Contains(lower, javascript) {
			continue
		}

		if strings.Contains(line, curlyBracket) {
			return "", domain.ReasonCurlyBracket, true
		}

		if containsAny(lower, policyPhrases) {
			continue
		}

		kept = append(kept, line)
	}

	if s.MinSentences > 0 && len(kept) < s.MinSentences {
		return "", domain.ReasonTooFewSentences, true
	}

	return strings.Join(kept, "\n"), "", false
}

// removeCitations drops "[citation needed]", "[edit]" and numeric references
// such as "[12]" or "[]".
func removeCitations(line string) string {
	if !strings.Contains(line, "[") {
		return line
	}

	var b strings.Builder

	b.Grow(len(line))

	for i := 0; i < len(line); i++ {
		if line[i] != '[' {
			b.WriteByte(line[i])
			continue
		}

		rest := line[i:]

		switch {
		case strings.HasPrefix(rest, citationNeeded):
			i += len(citationNeeded) - 1
		case strings.HasPrefix(rest, editMarker):
			i += len(editMarker) - 1
		default:
			j := i + 1
			for j < len(line) && line[j] >= '0' && line[j] <= '9' {
				j++
			}

			if j < len(line) && line[j] == ']' {
				i = j
				continue
			}

			b.WriteByte(line[i])
		}
	}

	return b.String()
}

func wordsFit(line string, s LineStages) bool {
	words := strings.Fields(line)
	if len(words) < s.MinWordsPerLine {
		return false
	}

	if s.MaxWordLength == 0 {
		return true
	}

	for _, w := range words {
		if len(w) > s.MaxWordLength {
			return false
		}
	}

	return true
}

func endsSentence(line string) bool {
	if strings.HasSuffix(line, asciiEllipsis) {
		return false
	}

	last, _ := utf8.DecodeLastRuneInString(line)

	return terminalPunctuation.Contains(last)
}

// checkParagraphs requires at least MinParagraphs lines, the MinParagraphs
// longest of which are each at least MinParagraphLength bytes.
func checkParagraphs(text string, s LineStages) (domain.Reason, bool) {
	if s.MinParagraphs == 0 {
		return "", false
	}

	lines := newlineSplit(text)
	if len(lines) < s.MinParagraphs {
		return domain.ReasonTooFewParagraphs, true
	}

	lengths := make([]int, len(lines))
	for i, line := range lines {
		lengths[i] = len(line)
	}

	slices.SortFunc(lengths, func(a, b int) int { return b - a })

	if lengths[s.MinParagraphs-1] < s.MinParagraphLength {
		return domain.ReasonShortParagraphs, true
	}

	return "", false
}

func containsBadWord(text string, badWords []string) bool {
	lower := strings.ToLower(text)

	for _, bw := range badWords {
		bw = strings.ToLower(bw)
		if bw == "" {
			continue
		}

		for offset := 0; ; {
			idx := strings.Index(lower[offset:], bw)
			if idx < 0 {
				break
			}

			start := offset + idx
			end := start + len(bw)

			if wordBoundaryBefore(lower, start) && wordBoundaryAfter(lower, end) {
				return true
			}

			offset = start + 1
		}
	}

	return false
}

func wordBoundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}

	r, _ := utf8.DecodeLastRuneInString(s[:i])

	return !isAlnum(r)
}

func wordBoundaryAfter(s string, i int) bool {
	if i == len(s) {
		return true
	}

	r, _ := utf8.DecodeRuneInString(s[i:])

	return !isAlnum(r)
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// newlineSplit splits on "\n" only, dropping a trailing "\r" from each line
// and the empty line after a final newline.
func newlineSplit(text string) []string {
	if text == "" {
		return nil
	}

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

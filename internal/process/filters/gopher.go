// Package filters implements the Gopher-style document quality gate.
//
// A document passes through an ordered list of statistical checks and is
// rejected by the first one that fails:
//   - Non-symbol word count bounds
//   - Mean word length bounds
//   - Hash and ellipsis density
//   - Bullet and trailing-ellipsis line ratios
//   - Alphabetic word fraction
//   - Stop-word presence
//
// Documents that pass may then go through the optional line-level stages
// (see LineStages), which are disabled by default.
//
// The check order is part of the contract: reports key off the reason of the
// first failing check. Classification is pure and never fails.
package filters

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lueurxax/websift/internal/core/domain"
)

const (
	hashMark        = "#"
	asciiEllipsis   = "..."
	unicodeEllipsis = "…"
	bulletGlyph     = "•"
	dashBullet      = "-"
)

// Classifier applies a validated Profile to documents. It is safe for
// concurrent use.
type Classifier struct {
	profile Profile
}

// NewClassifier validates the profile and returns a classifier bound to it.
func NewClassifier(p Profile) (*Classifier, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("new classifier: %w", err)
	}

	return &Classifier{profile: p}, nil
}

// Profile returns the thresholds the classifier was built with.
func (c *Classifier) Profile() Profile {
	return c.profile
}

// Classify returns the verdict for text.
func (c *Classifier) Classify(text string) domain.Verdict {
	return Classify(text, c.profile)
}

// Classify evaluates text against p. It does not validate p.
func Classify(text string, p Profile) domain.Verdict {
	words := splitWords(text)

	if reason, failed := checkWordStats(words, p); failed {
		return domain.Rejected(reason)
	}

	if reason, failed := checkSymbolDensity(text, len(words), p); failed {
		return domain.Rejected(reason)
	}

	if reason, failed := checkLines(text, p); failed {
		return domain.Rejected(reason)
	}

	if reason, failed := checkAlphaFraction(words, p); failed {
		return domain.Rejected(reason)
	}

	if p.MinStopWords > 0 && countStopWords(words, p.StopWords) < p.MinStopWords {
		return domain.Rejected(domain.ReasonEnoughStopWords)
	}

	if reason, failed := checkLineStages(text, p.Lines); failed {
		return domain.Rejected(reason)
	}

	return domain.Kept()
}

// checkWordStats applies the document length and mean word length bounds,
// both measured over non-symbol words only.
func checkWordStats(words []string, p Profile) (domain.Reason, bool) {
	nonSymbol := 0
	runes := 0

	for _, w := range words {
		if isSymbolWord(w, p.Punctuation) {
			continue
		}

		nonSymbol++
		runes += utf8.RuneCountInString(w)
	}

	if p.MinDocWords > 0 && nonSymbol < p.MinDocWords {
		return domain.ReasonShortDoc, true
	}

	if p.MaxDocWords > 0 && nonSymbol > p.MaxDocWords {
		return domain.ReasonLongDoc, true
	}

	avg := 0.0
	if nonSymbol > 0 {
		avg = float64(runes) / float64(nonSymbol)
	}

	if p.MinAvgWordLength > 0 && avg < p.MinAvgWordLength {
		return domain.ReasonBelowAvgThreshold, true
	}

	if p.MaxAvgWordLength > 0 && avg > p.MaxAvgWordLength {
		return domain.ReasonAboveAvgThreshold, true
	}

	return "", false
}

// checkSymbolDensity compares hash and ellipsis occurrences in the whole text
// against the total word count. Both share one threshold.
func checkSymbolDensity(text string, nWords int, p Profile) (domain.Reason, bool) {
	if p.MaxSymbolWordRatio <= 0 {
		return "", false
	}

	if nWords == 0 {
		return domain.ReasonShortDoc, true
	}

	if ratio(strings.Count(text, hashMark), nWords) > p.MaxSymbolWordRatio {
		return domain.ReasonTooManyHashes, true
	}

	ellipses := strings.Count(text, asciiEllipsis) + strings.Count(text, unicodeEllipsis)
	if ratio(ellipses, nWords) > p.MaxSymbolWordRatio {
		return domain.ReasonTooManyEllipsis, true
	}

	return "", false
}

func checkLines(text string, p Profile) (domain.Reason, bool) {
	if p.MaxBulletLinesRatio <= 0 && p.MaxEllipsisLinesRatio <= 0 {
		return "", false
	}

	lines := splitLines(text)
	if len(lines) == 0 {
		lines = []string{text}
	}

	if p.MaxBulletLinesRatio > 0 {
		bullets := 0

		for _, line := range lines {
			trimmed := trimLeftSpace(line)
			if strings.HasPrefix(trimmed, bulletGlyph) || strings.HasPrefix(trimmed, dashBullet) {
				bullets++
			}
		}

		if ratio(bullets, len(lines)) > p.MaxBulletLinesRatio {
			return domain.ReasonTooManyBullets, true
		}
	}

	if p.MaxEllipsisLinesRatio > 0 {
		trailing := 0

		for _, line := range lines {
			trimmed := trimRightSpace(line)
			if strings.HasSuffix(trimmed, asciiEllipsis) || strings.HasSuffix(trimmed, unicodeEllipsis) {
				trailing++
			}
		}

		if ratio(trailing, len(lines)) > p.MaxEllipsisLinesRatio {
			return domain.ReasonTooManyEndEllipsis, true
		}
	}

	return "", false
}

// checkAlphaFraction rejects when too few words carry a letter. The fraction
// is taken over all words, symbol-only words included.
func checkAlphaFraction(words []string, p Profile) (domain.Reason, bool) {
	if p.MaxNonAlphaWordsRatio <= 0 {
		return "", false
	}

	if len(words) == 0 {
		return domain.ReasonShortDoc, true
	}

	alpha := 0

	for _, w := range words {
		if hasLetter(w) {
			alpha++
		}
	}

	if ratio(alpha, len(words)) < p.MaxNonAlphaWordsRatio {
		return domain.ReasonBelowAlphaThreshold, true
	}

	return "", false
}

func countStopWords(words []string, stopWords WordSet) int {
	n := 0

	for _, w := range words {
		if stopWords.Contains(w) {
			n++
		}
	}

	return n
}

// isSymbolWord reports whether every rune of w is punctuation.
func isSymbolWord(w string, punctuation RuneSet) bool {
	for _, r := range w {
		if !punctuation.Contains(r) {
			return false
		}
	}

	return true
}

func ratio(numerator, denominator int) float64 {
	return float64(numerator) / float64(denominator)
}

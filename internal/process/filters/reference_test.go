package filters

import (
	"math/rand"
	"strings"
	"unicode"

	"github.com/lueurxax/websift/internal/core/domain"
)

// referenceClassify is a deliberately naive rendition of the filter used as a
// test oracle. It shares no helpers with the production code.
func referenceClassify(text string, p Profile) domain.Verdict {
	words := referenceWords(text)

	nonSymbol := make([]string, 0, len(words))

	for _, w := range words {
		symbolOnly := true

		for _, r := range w {
			if !strings.ContainsRune(DefaultPunctuation, r) {
				symbolOnly = false
				break
			}
		}

		if !symbolOnly {
			nonSymbol = append(nonSymbol, w)
		}
	}

	if p.MinDocWords > 0 && len(nonSymbol) < p.MinDocWords {
		return domain.Rejected(domain.ReasonShortDoc)
	}

	if p.MaxDocWords > 0 && len(nonSymbol) > p.MaxDocWords {
		return domain.Rejected(domain.ReasonLongDoc)
	}

	total := 0
	for _, w := range nonSymbol {
		total += len([]rune(w))
	}

	avg := 0.0
	if len(nonSymbol) > 0 {
		avg = float64(total) / float64(len(nonSymbol))
	}

	if p.MinAvgWordLength > 0 && avg < p.MinAvgWordLength {
		return domain.Rejected(domain.ReasonBelowAvgThreshold)
	}

	if p.MaxAvgWordLength > 0 && avg > p.MaxAvgWordLength {
		return domain.Rejected(domain.ReasonAboveAvgThreshold)
	}

	if p.MaxSymbolWordRatio > 0 {
		if len(words) == 0 {
			return domain.Rejected(domain.ReasonShortDoc)
		}

		n := float64(len(words))

		if float64(strings.Count(text, "#"))/n > p.MaxSymbolWordRatio {
			return domain.Rejected(domain.ReasonTooManyHashes)
		}

		if float64(strings.Count(text, "...")+strings.Count(text, "…"))/n > p.MaxSymbolWordRatio {
			return domain.Rejected(domain.ReasonTooManyEllipsis)
		}
	}

	lines := referenceLines(text)
	if len(lines) == 0 {
		lines = []string{text}
	}

	bullets, trailing := 0, 0

	for _, line := range lines {
		left := strings.TrimLeftFunc(line, referenceSpace)
		if strings.HasPrefix(left, "•") || strings.HasPrefix(left, "-") {
			bullets++
		}

		right := strings.TrimRightFunc(line, referenceSpace)
		if strings.HasSuffix(right, "...") || strings.HasSuffix(right, "…") {
			trailing++
		}
	}

	if p.MaxBulletLinesRatio > 0 && float64(bullets)/float64(len(lines)) > p.MaxBulletLinesRatio {
		return domain.Rejected(domain.ReasonTooManyBullets)
	}

	if p.MaxEllipsisLinesRatio > 0 && float64(trailing)/float64(len(lines)) > p.MaxEllipsisLinesRatio {
		return domain.Rejected(domain.ReasonTooManyEndEllipsis)
	}

	if p.MaxNonAlphaWordsRatio > 0 {
		if len(words) == 0 {
			return domain.Rejected(domain.ReasonShortDoc)
		}

		alpha := 0

		for _, w := range words {
			if strings.IndexFunc(w, unicode.IsLetter) >= 0 {
				alpha++
			}
		}

		if float64(alpha)/float64(len(words)) < p.MaxNonAlphaWordsRatio {
			return domain.Rejected(domain.ReasonBelowAlphaThreshold)
		}
	}

	if p.MinStopWords > 0 {
		stop := 0

		for _, w := range words {
			if _, ok := p.StopWords[w]; ok {
				stop++
			}
		}

		if stop < p.MinStopWords {
			return domain.Rejected(domain.ReasonEnoughStopWords)
		}
	}

	return domain.Kept()
}

func referenceSpace(r rune) bool {
	return unicode.In(r, unicode.White_Space) || (r >= 0x1c && r <= 0x1f)
}

func referenceWords(text string) []string {
	var (
		words   []string
		current []rune
	)

	for _, r := range text {
		if referenceSpace(r) {
			if len(current) > 0 {
				words = append(words, string(current))
				current = current[:0]
			}

			continue
		}

		current = append(current, r)
	}

	if len(current) > 0 {
		words = append(words, string(current))
	}

	return words
}

// referenceLines normalises every boundary to "\n", splits, and drops the
// empty element a trailing boundary leaves behind.
func referenceLines(text string) []string {
	normalised := strings.ReplaceAll(text, "\r\n", "\n")
	normalised = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\v', '\f', 0x1c, 0x1d, 0x1e, 0x85, 0x2028, 0x2029:
			return '\n'
		}

		return r
	}, normalised)

	parts := strings.Split(normalised, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}

	return parts
}

var corpusTokens = []string{
	"the", "be", "to", "of", "and", "that", "have", "with",
	"alpha", "content", "quick", "brown", "fox", "incomprehensibilities", "a",
	"123", "42", "#", "#tag", "...", "…", "wait...", "-", "•", "--", "!!", "(x)",
	"日本語", "naïve", "Über", "e.g.",
}

var corpusSeparators = []string{
	" ", " ", " ", " ", "\n", "\n", "\t", "\r\n", "\r", " ", " ", "\u0085", "\x1f", "\x1c", "\f", "  ",
}

// generateCorpus builds a reproducible set of documents mixing every token
// class the checks look at.
func generateCorpus(n int, seed int64) []string {
	rng := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic test data
	docs := make([]string, 0, n)

	for range n {
		length := rng.Intn(160)

		var b strings.Builder

		for j := range length {
			if j > 0 {
				b.WriteString(corpusSeparators[rng.Intn(len(corpusSeparators))])
			}

			b.WriteString(corpusTokens[rng.Intn(len(corpusTokens))])
		}

		docs = append(docs, b.String())
	}

	return docs
}

package filters

import (
	"fmt"
	"math"

	apperrors "github.com/lueurxax/websift/internal/core/errors"
)

const (
	defaultMinDocWords           = 50
	defaultMaxDocWords           = 100000
	defaultMinAvgWordLength      = 3
	defaultMaxAvgWordLength      = 10
	defaultMaxSymbolWordRatio    = 0.1
	defaultMaxBulletLinesRatio   = 0.9
	defaultMaxEllipsisLinesRatio = 0.3
	defaultMaxNonAlphaWordsRatio = 0.8
	defaultMinStopWords          = 2

	// DefaultPunctuation is the ASCII punctuation set used to detect symbol-only words.
	DefaultPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
)

// DefaultStopWords returns the stop-word vocabulary of the default profile.
func DefaultStopWords() []string {
	return []string{"the", "be", "to", "of", "and", "that", "have", "with"}
}

// WordSet is an immutable set of exact-match tokens.
type WordSet map[string]struct{}

// NewWordSet builds a set from words. Empty strings are ignored.
func NewWordSet(words ...string) WordSet {
	set := make(WordSet, len(words))

	for _, w := range words {
		if w == "" {
			continue
		}

		set[w] = struct{}{}
	}

	return set
}

// Contains reports exact membership; no case folding is applied.
func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// RuneSet is an immutable set of characters.
type RuneSet map[rune]struct{}

// NewRuneSet builds a set from the characters of chars.
func NewRuneSet(chars string) RuneSet {
	set := make(RuneSet, len(chars))
	for _, r := range chars {
		set[r] = struct{}{}
	}

	return set
}

// Contains reports whether r is in the set.
func (s RuneSet) Contains(r rune) bool {
	_, ok := s[r]
	return ok
}

// Profile holds the classifier thresholds. A zero threshold disables its check.
// A Profile must not be modified once a run has started.
type Profile struct {
	MinDocWords           int
	MaxDocWords           int
	MinAvgWordLength      float64
	MaxAvgWordLength      float64
	MaxSymbolWordRatio    float64
	MaxBulletLinesRatio   float64
	MaxEllipsisLinesRatio float64
	// MaxNonAlphaWordsRatio is a lower bound despite its name: a document is rejected
	// when the fraction of words containing a letter is below it.
	MaxNonAlphaWordsRatio float64
	MinStopWords          int
	StopWords             WordSet
	Punctuation           RuneSet

	// Lines holds the optional line-level stages.
	Lines LineStages
}

// DefaultProfile returns the reference thresholds.
func DefaultProfile() Profile {
	return Profile{
		MinDocWords:           defaultMinDocWords,
		MaxDocWords:           defaultMaxDocWords,
		MinAvgWordLength:      defaultMinAvgWordLength,
		MaxAvgWordLength:      defaultMaxAvgWordLength,
		MaxSymbolWordRatio:    defaultMaxSymbolWordRatio,
		MaxBulletLinesRatio:   defaultMaxBulletLinesRatio,
		MaxEllipsisLinesRatio: defaultMaxEllipsisLinesRatio,
		MaxNonAlphaWordsRatio: defaultMaxNonAlphaWordsRatio,
		MinStopWords:          defaultMinStopWords,
		StopWords:             NewWordSet(DefaultStopWords()...),
		Punctuation:           NewRuneSet(DefaultPunctuation),
		Lines:                 DefaultLineStages(),
	}
}

// Validate checks the profile for inconsistent or out-of-range thresholds.
// Every failure wraps errors.ErrInvalidProfile.
func (p Profile) Validate() error {
	counts := []struct {
		name  string
		value int
	}{
		{"min_doc_words", p.MinDocWords},
		{"max_doc_words", p.MaxDocWords},
		{"min_stop_words", p.MinStopWords},
	}

	for _, c := range counts {
		if c.value < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %d", apperrors.ErrInvalidProfile, c.name, c.value)
		}
	}

	ratios := []struct {
		name     string
		value    float64
		fraction bool
	}{
		{"min_avg_word_length", p.MinAvgWordLength, false},
		{"max_avg_word_length", p.MaxAvgWordLength, false},
		{"max_symbol_word_ratio", p.MaxSymbolWordRatio, false},
		{"max_bullet_lines_ratio", p.MaxBulletLinesRatio, true},
		{"max_ellipsis_lines_ratio", p.MaxEllipsisLinesRatio, true},
		{"max_non_alpha_words_ratio", p.MaxNonAlphaWordsRatio, true},
	}

	for _, r := range ratios {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) || r.value < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number, got %v", apperrors.ErrInvalidProfile, r.name, r.value)
		}

		if r.fraction && r.value > 1 {
			return fmt.Errorf("%w: %s is a fraction and must not exceed 1, got %v", apperrors.ErrInvalidProfile, r.name, r.value)
		}
	}

	if p.MinDocWords > 0 && p.MaxDocWords > 0 && p.MinDocWords > p.MaxDocWords {
		return fmt.Errorf("%w: min_doc_words %d exceeds max_doc_words %d",
			apperrors.ErrInvalidProfile, p.MinDocWords, p.MaxDocWords)
	}

	if p.MinAvgWordLength > 0 && p.MaxAvgWordLength > 0 && p.MinAvgWordLength > p.MaxAvgWordLength {
		return fmt.Errorf("%w: min_avg_word_length %v exceeds max_avg_word_length %v",
			apperrors.ErrInvalidProfile, p.MinAvgWordLength, p.MaxAvgWordLength)
	}

	if p.MinStopWords > 0 && len(p.StopWords) == 0 {
		return fmt.Errorf("%w: min_stop_words is %d but the stop-word set is empty",
			apperrors.ErrInvalidProfile, p.MinStopWords)
	}

	return p.Lines.validate()
}

// Option adjusts one field of a Profile under construction.
type Option func(*Profile)

// NewProfile applies opts over DefaultProfile and validates the result.
func NewProfile(opts ...Option) (Profile, error) {
	p := DefaultProfile()
	for _, opt := range opts {
		opt(&p)
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}

	return p, nil
}

func WithDocWords(minWords, maxWords int) Option {
	return func(p *Profile) {
		p.MinDocWords = minWords
		p.MaxDocWords = maxWords
	}
}

func WithAvgWordLength(minLen, maxLen float64) Option {
	return func(p *Profile) {
		p.MinAvgWordLength = minLen
		p.MaxAvgWordLength = maxLen
	}
}

func WithMaxSymbolWordRatio(r float64) Option {
	return func(p *Profile) { p.MaxSymbolWordRatio = r }
}

func WithMaxBulletLinesRatio(r float64) Option {
	return func(p *Profile) { p.MaxBulletLinesRatio = r }
}

func WithMaxEllipsisLinesRatio(r float64) Option {
	return func(p *Profile) { p.MaxEllipsisLinesRatio = r }
}

// WithMaxNonAlphaWordsRatio sets the minimum alphabetic word fraction.
func WithMaxNonAlphaWordsRatio(r float64) Option {
	return func(p *Profile) { p.MaxNonAlphaWordsRatio = r }
}

func WithMinStopWords(n int) Option {
	return func(p *Profile) { p.MinStopWords = n }
}

// WithStopWords replaces the stop-word vocabulary.
func WithStopWords(words ...string) Option {
	return func(p *Profile) { p.StopWords = NewWordSet(words...) }
}

// WithPunctuation replaces the symbol character set.
func WithPunctuation(chars string) Option {
	return func(p *Profile) { p.Punctuation = NewRuneSet(chars) }
}

// WithLineStages replaces the line-level stage settings.
func WithLineStages(stages LineStages) Option {
	return func(p *Profile) { p.Lines = stages }
}

package config

import (
	"time"

	"github.com/lueurxax/websift/internal/process/filters"
)

// DatabaseConfig holds database connection settings for the verdict store.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"4"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"1"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
	ConnectRetries    int           `env:"DB_CONNECT_RETRIES" envDefault:"3"`
}

// GopherConfig holds the quality thresholds. Zero disables a check.
type GopherConfig struct {
	MinDocWords           int     `env:"MIN_DOC_WORDS" envDefault:"50"`
	MaxDocWords           int     `env:"MAX_DOC_WORDS" envDefault:"100000"`
	MinAvgWordLength      float64 `env:"MIN_AVG_WORD_LENGTH" envDefault:"3"`
	MaxAvgWordLength      float64 `env:"MAX_AVG_WORD_LENGTH" envDefault:"10"`
	MaxSymbolWordRatio    float64 `env:"MAX_SYMBOL_WORD_RATIO" envDefault:"0.1"`
	MaxBulletLinesRatio   float64 `env:"MAX_BULLET_LINES_RATIO" envDefault:"0.9"`
	MaxEllipsisLinesRatio float64 `env:"MAX_ELLIPSIS_LINES_RATIO" envDefault:"0.3"`
	// Minimum fraction of words containing a letter; the name is kept for compatibility.
	MaxNonAlphaWordsRatio float64  `env:"MAX_NON_ALPHA_WORDS_RATIO" envDefault:"0.8"`
	MinStopWords          int      `env:"MIN_STOP_WORDS" envDefault:"2"`
	StopWords             []string `env:"STOP_WORDS" envSeparator:"," envDefault:"the,be,to,of,and,that,have,with"`
	// Punctuation overrides the symbol character set when non-empty.
	Punctuation string `env:"PUNCTUATION"`
}

// LineStagesConfig toggles the optional line-level stages. All stages are off by default.
type LineStagesConfig struct {
	Quality            bool     `env:"QUALITY" envDefault:"false"`
	Paragraphs         bool     `env:"PARAGRAPHS" envDefault:"false"`
	BadWords           bool     `env:"BAD_WORDS" envDefault:"false"`
	MinSentences       int      `env:"MIN_SENTENCES" envDefault:"5"`
	MinWordsPerLine    int      `env:"MIN_WORDS_PER_LINE" envDefault:"3"`
	MaxWordLength      int      `env:"MAX_WORD_LENGTH" envDefault:"1000"`
	MinParagraphs      int      `env:"MIN_PARAGRAPHS" envDefault:"3"`
	MinParagraphLength int      `env:"MIN_PARAGRAPH_LENGTH" envDefault:"200"`
	BadWordList        []string `env:"BAD_WORD_LIST" envSeparator:"," envDefault:"porn,xxx,sex"`
}

// Stages converts the settings into filters.LineStages.
func (l LineStagesConfig) Stages() filters.LineStages {
	return filters.LineStages{
		Quality:            l.Quality,
		Paragraphs:         l.Paragraphs,
		BadWords:           l.BadWords,
		MinSentences:       l.MinSentences,
		MinWordsPerLine:    l.MinWordsPerLine,
		MaxWordLength:      l.MaxWordLength,
		MinParagraphs:      l.MinParagraphs,
		MinParagraphLength: l.MinParagraphLength,
		BadWordList:        trimAll(l.BadWordList),
	}
}

// DatabaseCfg returns the database settings.
func (c *Config) DatabaseCfg() DatabaseConfig {
	return c.Database
}

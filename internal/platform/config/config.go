package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/process/filters"
)

const (
	EnvLocal = "local"

	defaultMaxRecordBytes = 64 << 20
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Threads          int           `env:"WEBSIFT_THREADS" envDefault:"1"`
	Limit            int64         `env:"WEBSIFT_LIMIT" envDefault:"0"`
	QueueSize        int           `env:"WEBSIFT_QUEUE_SIZE" envDefault:"1024"`
	MaxRecordBytes   int           `env:"WEBSIFT_MAX_RECORD_BYTES" envDefault:"67108864"`
	ProgressInterval time.Duration `env:"WEBSIFT_PROGRESS_INTERVAL" envDefault:"10s"`
	MetricsTextfile  string        `env:"WEBSIFT_METRICS_TEXTFILE"`

	Database DatabaseConfig
	Gopher   GopherConfig     `envPrefix:"GOPHER_"`
	Lines    LineStagesConfig `envPrefix:"LINES_"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("%w: WEBSIFT_THREADS=%d", apperrors.ErrInvalidWorkerCount, c.Threads)
	}

	if c.Limit < 0 {
		return fmt.Errorf("%w: WEBSIFT_LIMIT=%d", apperrors.ErrInvalidLimit, c.Limit)
	}

	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: WEBSIFT_QUEUE_SIZE=%d", apperrors.ErrInvalidLimit, c.QueueSize)
	}

	if c.MaxRecordBytes <= 0 {
		c.MaxRecordBytes = defaultMaxRecordBytes
	}

	return nil
}

// IsLocal reports whether the process runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.AppEnv == EnvLocal
}

// Profile builds and validates the classifier profile from the GOPHER_* and
// LINES_* settings.
func (c *Config) Profile() (filters.Profile, error) {
	opts := append(c.Gopher.options(), filters.WithLineStages(c.Lines.Stages()))

	p, err := filters.NewProfile(opts...)
	if err != nil {
		return filters.Profile{}, fmt.Errorf("building quality profile: %w", err)
	}

	return p, nil
}

// options converts the thresholds into profile options.
func (g GopherConfig) options() []filters.Option {
	opts := []filters.Option{
		filters.WithDocWords(g.MinDocWords, g.MaxDocWords),
		filters.WithAvgWordLength(g.MinAvgWordLength, g.MaxAvgWordLength),
		filters.WithMaxSymbolWordRatio(g.MaxSymbolWordRatio),
		filters.WithMaxBulletLinesRatio(g.MaxBulletLinesRatio),
		filters.WithMaxEllipsisLinesRatio(g.MaxEllipsisLinesRatio),
		filters.WithMaxNonAlphaWordsRatio(g.MaxNonAlphaWordsRatio),
		filters.WithMinStopWords(g.MinStopWords),
		filters.WithStopWords(trimAll(g.StopWords)...),
	}

	if g.Punctuation != "" {
		opts = append(opts, filters.WithPunctuation(g.Punctuation))
	}

	return opts
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.TrimSpace(v))
	}

	return out
}

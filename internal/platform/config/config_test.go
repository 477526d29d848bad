package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/process/filters"
)

const testErrLoad = "Load() error = %v"

func unsetAll(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetAll(t,
		"APP_ENV", "LOG_LEVEL", "WEBSIFT_THREADS", "WEBSIFT_LIMIT", "WEBSIFT_QUEUE_SIZE",
		"WEBSIFT_MAX_RECORD_BYTES", "WEBSIFT_PROGRESS_INTERVAL", "POSTGRES_DSN",
		"GOPHER_MIN_DOC_WORDS", "GOPHER_STOP_WORDS", "GOPHER_PUNCTUATION",
	)

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if !cfg.IsLocal() {
		t.Errorf("AppEnv default = %q, want %q", cfg.AppEnv, EnvLocal)
	}

	if cfg.Threads != 1 {
		t.Errorf("Threads default = %d, want 1", cfg.Threads)
	}

	if cfg.QueueSize != 1024 {
		t.Errorf("QueueSize default = %d, want 1024", cfg.QueueSize)
	}

	if cfg.MaxRecordBytes != 64<<20 {
		t.Errorf("MaxRecordBytes default = %d, want %d", cfg.MaxRecordBytes, 64<<20)
	}

	if cfg.ProgressInterval != 10*time.Second {
		t.Errorf("ProgressInterval default = %v, want 10s", cfg.ProgressInterval)
	}

	if cfg.Database.PostgresDSN != "" {
		t.Errorf("PostgresDSN default = %q, want empty", cfg.Database.PostgresDSN)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	def := filters.DefaultProfile()

	if p.MinDocWords != def.MinDocWords || p.MaxDocWords != def.MaxDocWords {
		t.Errorf("doc word bounds = %d/%d, want %d/%d", p.MinDocWords, p.MaxDocWords, def.MinDocWords, def.MaxDocWords)
	}

	if p.MaxNonAlphaWordsRatio != def.MaxNonAlphaWordsRatio {
		t.Errorf("MaxNonAlphaWordsRatio = %v, want %v", p.MaxNonAlphaWordsRatio, def.MaxNonAlphaWordsRatio)
	}

	if len(p.StopWords) != len(def.StopWords) {
		t.Errorf("stop words = %d, want %d", len(p.StopWords), len(def.StopWords))
	}

	if len(p.Punctuation) != len(def.Punctuation) {
		t.Errorf("punctuation = %d runes, want %d", len(p.Punctuation), len(def.Punctuation))
	}
}

func TestLoad_GopherOverrides(t *testing.T) {
	t.Setenv("GOPHER_MIN_DOC_WORDS", "0")
	t.Setenv("GOPHER_MAX_SYMBOL_WORD_RATIO", "0.25")
	t.Setenv("GOPHER_STOP_WORDS", "der, die ,das")
	t.Setenv("GOPHER_PUNCTUATION", "#!")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	if p.MinDocWords != 0 {
		t.Errorf("MinDocWords = %d, want 0", p.MinDocWords)
	}

	if p.MaxSymbolWordRatio != 0.25 {
		t.Errorf("MaxSymbolWordRatio = %v, want 0.25", p.MaxSymbolWordRatio)
	}

	for _, w := range []string{"der", "die", "das"} {
		if !p.StopWords.Contains(w) {
			t.Errorf("stop word %q missing", w)
		}
	}

	if p.Punctuation.Contains('.') {
		t.Error("punctuation override should drop '.'")
	}
}

func TestLoad_LineStagesOffByDefault(t *testing.T) {
	unsetAll(t, "LINES_QUALITY", "LINES_PARAGRAPHS", "LINES_BAD_WORDS", "LINES_BAD_WORD_LIST")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	if p.Lines.Enabled() {
		t.Errorf("line stages enabled by default: %+v", p.Lines)
	}

	if p.Lines.MinSentences != 5 || p.Lines.MinParagraphLength != 200 {
		t.Errorf("line stage thresholds = %+v, want defaults", p.Lines)
	}
}

func TestLoad_LineStagesOverrides(t *testing.T) {
	t.Setenv("LINES_QUALITY", "true")
	t.Setenv("LINES_BAD_WORDS", "true")
	t.Setenv("LINES_MIN_SENTENCES", "2")
	t.Setenv("LINES_BAD_WORD_LIST", "spam, scam")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	p, err := cfg.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	if !p.Lines.Quality || !p.Lines.BadWords || p.Lines.Paragraphs {
		t.Errorf("stages = %+v, want quality and bad words only", p.Lines)
	}

	if p.Lines.MinSentences != 2 {
		t.Errorf("MinSentences = %d, want 2", p.Lines.MinSentences)
	}

	if got := strings.Join(p.Lines.BadWordList, ","); got != "spam,scam" {
		t.Errorf("BadWordList = %q, want %q", got, "spam,scam")
	}
}

func TestProfile_InvalidLineStages(t *testing.T) {
	t.Setenv("LINES_MIN_PARAGRAPHS", "-1")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	_, err = cfg.Profile()
	if !errors.Is(err, apperrors.ErrInvalidProfile) {
		t.Errorf("Profile() error = %v, want ErrInvalidProfile", err)
	}
}

func TestProfile_Invalid(t *testing.T) {
	t.Setenv("GOPHER_MIN_DOC_WORDS", "500")
	t.Setenv("GOPHER_MAX_DOC_WORDS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	_, err = cfg.Profile()
	if !errors.Is(err, apperrors.ErrInvalidProfile) {
		t.Errorf("Profile() error = %v, want ErrInvalidProfile", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		want  error
	}{
		{name: "negative threads", key: "WEBSIFT_THREADS", value: "-1", want: apperrors.ErrInvalidWorkerCount},
		{name: "negative limit", key: "WEBSIFT_LIMIT", value: "-3", want: apperrors.ErrInvalidLimit},
		{name: "zero queue", key: "WEBSIFT_QUEUE_SIZE", value: "0", want: apperrors.ErrInvalidLimit},
		{name: "unparsable ratio", key: "GOPHER_MAX_BULLET_LINES_RATIO", value: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			if err == nil {
				t.Fatal("expected error")
			}

			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lueurxax/websift/internal/core/domain"
	apperrors "github.com/lueurxax/websift/internal/core/errors"
	"github.com/lueurxax/websift/internal/process/batch"
	"github.com/lueurxax/websift/internal/process/filters"
)

// RunMeta describes where a run came from.
type RunMeta struct {
	Input   string
	Profile filters.Profile
}

// Run is a stored run header.
type Run struct {
	ID        uuid.UUID
	Input     string
	Workers   int
	Docs      int64
	Kept      int64
	Dropped   int64
	Bytes     int64
	Elapsed   time.Duration
	CreatedAt time.Time
}

type DropReasonStat struct {
	Reason string
	Count  int64
}

type profileSnapshot struct {
	MinDocWords           int      `json:"min_doc_words"`
	MaxDocWords           int      `json:"max_doc_words"`
	MinAvgWordLength      float64  `json:"min_avg_word_length"`
	MaxAvgWordLength      float64  `json:"max_avg_word_length"`
	MaxSymbolWordRatio    float64  `json:"max_symbol_word_ratio"`
	MaxBulletLinesRatio   float64  `json:"max_bullet_lines_ratio"`
	MaxEllipsisLinesRatio float64  `json:"max_ellipsis_lines_ratio"`
	MaxNonAlphaWordsRatio float64  `json:"max_non_alpha_words_ratio"`
	MinStopWords          int      `json:"min_stop_words"`
	StopWords             []string `json:"stop_words"`

	Lines *lineStagesSnapshot `json:"lines,omitempty"`
}

// lineStagesSnapshot is only stored when at least one line stage is on.
type lineStagesSnapshot struct {
	Quality            bool     `json:"quality"`
	Paragraphs         bool     `json:"paragraphs"`
	BadWords           bool     `json:"bad_words"`
	MinSentences       int      `json:"min_sentences"`
	MinWordsPerLine    int      `json:"min_words_per_line"`
	MaxWordLength      int      `json:"max_word_length"`
	MinParagraphs      int      `json:"min_paragraphs"`
	MinParagraphLength int      `json:"min_paragraph_length"`
	BadWordList        []string `json:"bad_word_list,omitempty"`
}

func snapshotLineStages(s filters.LineStages) *lineStagesSnapshot {
	if !s.Enabled() {
		return nil
	}

	return &lineStagesSnapshot{
		Quality:            s.Quality,
		Paragraphs:         s.Paragraphs,
		BadWords:           s.BadWords,
		MinSentences:       s.MinSentences,
		MinWordsPerLine:    s.MinWordsPerLine,
		MaxWordLength:      s.MaxWordLength,
		MinParagraphs:      s.MinParagraphs,
		MinParagraphLength: s.MinParagraphLength,
		BadWordList:        s.BadWordList,
	}
}

func snapshotProfile(p filters.Profile) ([]byte, error) {
	words := make([]string, 0, len(p.StopWords))
	for w := range p.StopWords {
		words = append(words, w)
	}

	slices.Sort(words)

	data, err := json.Marshal(profileSnapshot{
		MinDocWords:           p.MinDocWords,
		MaxDocWords:           p.MaxDocWords,
		MinAvgWordLength:      p.MinAvgWordLength,
		MaxAvgWordLength:      p.MaxAvgWordLength,
		MaxSymbolWordRatio:    p.MaxSymbolWordRatio,
		MaxBulletLinesRatio:   p.MaxBulletLinesRatio,
		MaxEllipsisLinesRatio: p.MaxEllipsisLinesRatio,
		MaxNonAlphaWordsRatio: p.MaxNonAlphaWordsRatio,
		MinStopWords:          p.MinStopWords,
		StopWords:             words,
		Lines:                 snapshotLineStages(p.Lines),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}

	return data, nil
}

// SaveRun stores the run header, every collected verdict and the reason
// histogram in one transaction.
func (db *DB) SaveRun(ctx context.Context, res *batch.Result, meta RunMeta) error {
	profile, err := snapshotProfile(meta.Profile)
	if err != nil {
		return err
	}

	tx, err := db.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save run: %w", err)
	}

	if err := saveRunTx(ctx, tx, res, meta, profile); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			db.Logger.Error().Err(rbErr).Str(logFieldRunID, res.RunID.String()).Msg("rollback save run")
		}

		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save run: %w", err)
	}

	db.Logger.Info().
		Str(logFieldRunID, res.RunID.String()).
		Int(logFieldRows, len(res.Records)).
		Msg("run saved")

	return nil
}

func saveRunTx(ctx context.Context, tx pgx.Tx, res *batch.Result, meta RunMeta, profile []byte) error {
	runID := toUUID(res.RunID)
	agg := res.Aggregate

	_, err := tx.Exec(ctx, `
		INSERT INTO quality_runs (id, input, workers, docs, kept, dropped, bytes, elapsed_ms, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, runID, SanitizeUTF8(meta.Input), res.Workers, agg.Total, agg.Kept, agg.Dropped, agg.Bytes,
		res.Elapsed.Milliseconds(), profile)
	if err != nil {
		return fmt.Errorf("insert quality run: %w", err)
	}

	if len(res.Records) > 0 {
		rows := make([][]any, 0, len(res.Records))
		for _, rec := range res.Records {
			rows = append(rows, []any{
				runID,
				rec.Position,
				SanitizeUTF8(rec.RecordID),
				rec.Verdict.Status(),
				toText(string(rec.Verdict.Reason)),
			})
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{tableVerdicts}, verdictColumns, pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy quality verdicts: %w", err)
		}

		if n != int64(len(rows)) {
			return fmt.Errorf("copy quality verdicts: wrote %d of %d rows", n, len(rows))
		}
	}

	if len(agg.Reasons) == 0 {
		return nil
	}

	reasons := make([]string, 0, len(agg.Reasons))
	counts := make([]int64, 0, len(agg.Reasons))

	for _, rc := range agg.SortedReasons() {
		reasons = append(reasons, string(rc.Reason))
		counts = append(counts, rc.Count)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO quality_run_reasons (run_id, reason, count)
		SELECT $1, r.reason, r.count
		FROM unnest($2::text[], $3::bigint[]) AS r(reason, count)
	`, runID, reasons, counts)
	if err != nil {
		return fmt.Errorf("insert quality run reasons: %w", err)
	}

	return nil
}

// GetRun returns the stored header of a run, or errors.ErrRunNotFound.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	run := Run{ID: id}

	var elapsedMS int64

	err := db.q.QueryRow(ctx, `
		SELECT input, workers, docs, kept, dropped, bytes, elapsed_ms, created_at
		FROM quality_runs
		WHERE id = $1
	`, toUUID(id)).Scan(&run.Input, &run.Workers, &run.Docs, &run.Kept, &run.Dropped, &run.Bytes, &elapsedMS, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrRunNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("query quality run: %w", err)
	}

	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	return &run, nil
}

// GetRunReasonStats returns the drop-reason histogram of a run, largest first.
func (db *DB) GetRunReasonStats(ctx context.Context, id uuid.UUID) ([]DropReasonStat, error) {
	rows, err := db.q.Query(ctx, `
		SELECT reason, count
		FROM quality_run_reasons
		WHERE run_id = $1
		ORDER BY count DESC, reason
	`, toUUID(id))
	if err != nil {
		return nil, fmt.Errorf("query run reason stats: %w", err)
	}
	defer rows.Close()

	var stats []DropReasonStat

	for rows.Next() {
		var entry DropReasonStat
		if err := rows.Scan(&entry.Reason, &entry.Count); err != nil {
			return nil, fmt.Errorf("scan run reason stat row: %w", err)
		}

		stats = append(stats, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run reason stats rows: %w", err)
	}

	return stats, nil
}

// ReasonCounts converts stored stats back into an aggregate histogram.
func ReasonCounts(stats []DropReasonStat) map[domain.Reason]int64 {
	out := make(map[domain.Reason]int64, len(stats))
	for _, s := range stats {
		out[domain.Reason(s.Reason)] = s.Count
	}

	return out
}

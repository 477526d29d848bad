// Package domain holds the value types shared by the ingestion, classification,
// batch and reporting layers.
package domain

// Reason identifies which quality check rejected a document.
type Reason string

// Rejection reasons, in the order the classifier evaluates them.
const (
	ReasonShortDoc            Reason = "short_doc"
	ReasonLongDoc             Reason = "long_doc"
	ReasonBelowAvgThreshold   Reason = "below_avg_threshold"
	ReasonAboveAvgThreshold   Reason = "above_avg_threshold"
	ReasonTooManyHashes       Reason = "too_many_hashes"
	ReasonTooManyEllipsis     Reason = "too_many_ellipsis"
	ReasonTooManyBullets      Reason = "too_many_bullets"
	ReasonTooManyEndEllipsis  Reason = "too_many_end_ellipsis"
	ReasonBelowAlphaThreshold Reason = "below_alpha_threshold"
	// ReasonEnoughStopWords is reported when NOT enough stop words were found.
	ReasonEnoughStopWords Reason = "enough_stop_words"

	// Optional line-level stages, evaluated after the statistical checks.
	ReasonLoremIpsum       Reason = "lorem_ipsum"
	ReasonCurlyBracket     Reason = "curly_bracket"
	ReasonTooFewSentences  Reason = "too_few_sentences"
	ReasonTooFewParagraphs Reason = "too_few_paragraphs"
	ReasonShortParagraphs  Reason = "short_paragraphs"
	ReasonBadWords         Reason = "bad_words"

	// ReasonIngestionError marks a document the ingestion boundary could not decode.
	ReasonIngestionError Reason = "ingestion_error"
)

// Document status labels used by reports.
const (
	StatusKeep   = "keep"
	StatusReject = "reject"
)

// Document is one record handed over by the ingestion boundary.
type Document struct {
	ID       string
	Text     string
	Position int64
	// Err is set when the record could not be decoded. Such documents are never classified.
	Err error
}

// Verdict is the keep/reject decision for one document.
// Reason is empty if and only if Keep is true.
type Verdict struct {
	Keep   bool
	Reason Reason
}

// Kept returns the accepting verdict.
func Kept() Verdict {
	return Verdict{Keep: true}
}

// Rejected returns a rejecting verdict with the given reason.
func Rejected(reason Reason) Verdict {
	return Verdict{Reason: reason}
}

// Status returns the report label for the verdict.
func (v Verdict) Status() string {
	if v.Keep {
		return StatusKeep
	}

	return StatusReject
}

// VerdictRecord ties a verdict to its input record.
type VerdictRecord struct {
	Position int64
	RecordID string
	Verdict  Verdict
}

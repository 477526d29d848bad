package storage

import "time"

// Database connection constants
const (
	// ConnectionRetrySleep is the sleep duration between connection retries
	ConnectionRetrySleep = 2 * time.Second
	// defaultConnectionRetries is the number of attempts for the initial connection
	defaultConnectionRetries = 3

	defaultMaxConns          = 4
	defaultMinConns          = 1
	defaultMaxConnIdleTime   = 30 * time.Minute
	defaultMaxConnLifetime   = time.Hour
	defaultHealthCheckPeriod = time.Minute
)

// Table and column names used by COPY.
const (
	tableVerdicts = "quality_verdicts"
)

var verdictColumns = []string{"run_id", "position", "record_id", "status", "reason"}

const (
	logFieldRunID = "run_id"
	logFieldRows  = "rows"
)

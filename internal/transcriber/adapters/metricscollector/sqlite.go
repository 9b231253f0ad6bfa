package metricscollector

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	_ "github.com/mattn/go-sqlite3"
)

// Metrics periods
const (
	PeriodHour  = "hour"
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

type MetricsCollector struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewMetricsCollector creates a new metrics collector with SQLite. Use
// ":memory:" to keep the metrics for the lifetime of the process only.
func NewMetricsCollector(dbPath string, logger *slog.Logger) (*MetricsCollector, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}

	// every connection to ":memory:" is a separate database
	db.SetMaxOpenConns(1)

	collector := &MetricsCollector{
		db:     db,
		logger: logger,
	}

	if err := collector.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize metrics schema: %w", err)
	}

	logger.InfoContext(context.Background(), "Metrics collector initialized",
		"db_path", dbPath,
	)

	return collector, nil
}

// Close closes the database connection
func (mc *MetricsCollector) Close() error {
	return mc.db.Close()
}

// RecordRun records metrics for one produce run
func (mc *MetricsCollector) RecordRun(ctx context.Context, metrics core.RunMetrics) error {
	mc.logger.DebugContext(ctx, "Recording run metrics",
		"run_id", metrics.RunID,
		"engine", metrics.Engine,
		"elapsed_ms", metrics.Elapsed.Milliseconds(),
		"outcome", metrics.Outcome,
	)

	query := `
		INSERT INTO run_metrics (
			run_id, engine, language, model, outcome, error_code,
			elapsed_ms, segment_count, audio_size, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := mc.db.ExecContext(ctx, query,
		metrics.RunID,
		metrics.Engine,
		metrics.Language,
		metrics.Model,
		metrics.Outcome,
		metrics.ErrorCode,
		metrics.Elapsed.Milliseconds(),
		metrics.SegmentCount,
		metrics.AudioSize,
		metrics.Timestamp.UTC(),
	)

	if err != nil {
		mc.logger.ErrorContext(ctx, "Failed to record run metrics",
			"run_id", metrics.RunID,
			"error", err.Error(),
		)
		return fmt.Errorf("failed to record run metrics: %w", err)
	}

	return nil
}

// GetRunStats summarizes the runs recorded within the period
func (mc *MetricsCollector) GetRunStats(ctx context.Context, period string) (map[string]any, error) {
	window, err := periodDuration(period)
	if err != nil {
		return nil, err
	}
	cutoff := time.Now().UTC().Add(-window)

	var (
		runs        int64
		avgElapsed  sql.NullFloat64
		liveRuns    sql.NullInt64
		fallbacks   sql.NullInt64
		failures    sql.NullInt64
		avgSegments sql.NullFloat64
	)

	err = mc.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			AVG(elapsed_ms),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END),
			AVG(segment_count)
		FROM run_metrics
		WHERE timestamp >= ?
	`, core.OutcomeLive, core.OutcomeFallback, core.OutcomeFailed, cutoff).
		Scan(&runs, &avgElapsed, &liveRuns, &fallbacks, &failures, &avgSegments)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}

	stats := map[string]any{
		"period":             period,
		"runs":               runs,
		"avg_elapsed_ms":     avgElapsed.Float64,
		"avg_segment_count":  avgSegments.Float64,
		"live_runs":          liveRuns.Int64,
		"fallback_runs":      fallbacks.Int64,
		"error_count":        failures.Int64,
		"success_rate":       0.0,
		"most_used_language": "",
		"top_error_codes":    []map[string]any{},
	}

	if runs == 0 {
		return stats, nil
	}
	stats["success_rate"] = float64(runs-failures.Int64) / float64(runs)

	var language sql.NullString
	err = mc.db.QueryRowContext(ctx, `
		SELECT language FROM run_metrics
		WHERE timestamp >= ?
		GROUP BY language
		ORDER BY COUNT(*) DESC, language ASC
		LIMIT 1
	`, cutoff).Scan(&language)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query most used language: %w", err)
	}
	stats["most_used_language"] = language.String

	errorCodes, err := mc.topErrorCodes(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	stats["top_error_codes"] = errorCodes

	return stats, nil
}

func (mc *MetricsCollector) topErrorCodes(ctx context.Context, cutoff time.Time) ([]map[string]any, error) {
	rows, err := mc.db.QueryContext(ctx, `
		SELECT error_code, COUNT(*) AS error_count
		FROM run_metrics
		WHERE timestamp >= ? AND error_code != ''
		GROUP BY error_code
		ORDER BY error_count DESC, error_code ASC
		LIMIT 5
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query error codes: %w", err)
	}
	defer rows.Close()

	codes := []map[string]any{}
	for rows.Next() {
		var (
			code  string
			count int64
		)
		if err := rows.Scan(&code, &count); err != nil {
			return nil, fmt.Errorf("failed to scan error code: %w", err)
		}
		codes = append(codes, map[string]any{
			"error_code":  code,
			"error_count": count,
		})
	}

	return codes, rows.Err()
}

func periodDuration(period string) (time.Duration, error) {
	switch period {
	case PeriodHour:
		return time.Hour, nil
	case PeriodDay, "":
		return 24 * time.Hour, nil
	case PeriodWeek:
		return 7 * 24 * time.Hour, nil
	case PeriodMonth:
		return 30 * 24 * time.Hour, nil
	default:
		return 0, core.NewValidationError("period", fmt.Sprintf("unsupported period: %s", period))
	}
}

// initSchema initializes the database schema
func (mc *MetricsCollector) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_metrics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		engine TEXT NOT NULL,
		language TEXT NOT NULL,
		model TEXT,
		outcome TEXT NOT NULL,
		error_code TEXT NOT NULL DEFAULT '',
		elapsed_ms INTEGER NOT NULL,
		segment_count INTEGER NOT NULL,
		audio_size INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_run_metrics_timestamp ON run_metrics(timestamp);
	CREATE INDEX IF NOT EXISTS idx_run_metrics_run_id ON run_metrics(run_id);
	`

	_, err := mc.db.Exec(schema)
	return err
}

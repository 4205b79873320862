package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QueryRecord is one answered question, kept for the activity view.
type QueryRecord struct {
	ID         string
	AnalysisID string
	Query      string
	Answer     string
	ResponseMS int64
	CreatedAt  time.Time
}

type HistoryRepository struct {
	db *DB
}

func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// RecordQuery satisfies workflow.HistoryRecorder.
func (r *HistoryRepository) RecordQuery(ctx context.Context, analysisID, query, answer string, took time.Duration) error {
	record := QueryRecord{
		ID:         uuid.New().String(),
		AnalysisID: analysisID,
		Query:      query,
		Answer:     answer,
		ResponseMS: took.Milliseconds(),
		CreatedAt:  time.Now(),
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO query_history (id, analysis_id, query, answer, response_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.AnalysisID, record.Query, record.Answer, record.ResponseMS, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert query record: %w", err)
	}
	return nil
}

func (r *HistoryRepository) ListRecent(ctx context.Context, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, analysis_id, query, answer, response_ms, created_at
		 FROM query_history
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list query history: %w", err)
	}
	defer rows.Close()

	var records []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		if err := rows.Scan(&rec.ID, &rec.AnalysisID, &rec.Query, &rec.Answer, &rec.ResponseMS, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan query record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

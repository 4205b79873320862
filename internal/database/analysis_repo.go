package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pronob/libvision/internal/models"
)

// AnalysisRecord summarizes one completed analysis. The full result lives
// only in the session store; this row backs the recent-activity view.
type AnalysisRecord struct {
	ID            string
	MediaFilename string
	MediaType     models.MediaType
	BookCount     int
	PeopleCount   int
	CreatedAt     time.Time
}

type AnalysisRepository struct {
	db *DB
}

func NewAnalysisRepository(db *DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

func (r *AnalysisRepository) InsertAnalysis(ctx context.Context, record AnalysisRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO analyses (id, media_filename, media_type, book_count, people_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID, record.MediaFilename, record.MediaType, record.BookCount, record.PeopleCount, record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert analysis record: %w", err)
	}
	return nil
}

func (r *AnalysisRepository) GetAnalysisByID(ctx context.Context, id string) (*AnalysisRecord, error) {
	var rec AnalysisRecord
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, media_filename, media_type, book_count, people_count, created_at
		 FROM analyses WHERE id = ?`, id).
		Scan(&rec.ID, &rec.MediaFilename, &rec.MediaType, &rec.BookCount, &rec.PeopleCount, &rec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("analysis not found: %w", err)
	}
	return &rec, nil
}

func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]AnalysisRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, media_filename, media_type, book_count, people_count, created_at
		 FROM analyses
		 ORDER BY created_at DESC
		 LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var rec AnalysisRecord
		if err := rows.Scan(&rec.ID, &rec.MediaFilename, &rec.MediaType, &rec.BookCount, &rec.PeopleCount, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis record: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return records, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loanlens/loanlens/internal/model"
)

// createdLayout is fixed-width so created_at sorts lexically.
const createdLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RecordPrediction appends a prediction to the history.
func (c *Cache) RecordPrediction(ctx context.Context, rec model.PredictionRecord) error {
	applicant, err := json.Marshal(rec.Applicant)
	if err != nil {
		return err
	}
	_, err = c.db.ExecContext(ctx, `INSERT INTO predictions (id, created_at, applicant, percent, label)
		VALUES (?, ?, ?, ?, ?)`,
		rec.ID, rec.CreatedAt.UTC().Format(createdLayout), string(applicant), rec.Percent, rec.Label,
	)
	if err != nil {
		return fmt.Errorf("recording prediction: %w", err)
	}
	return nil
}

// RecentPredictions returns up to limit predictions, newest first.
func (c *Cache) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := c.db.QueryContext(ctx, `SELECT id, created_at, applicant, percent, label
		FROM predictions ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.PredictionRecord
	for rows.Next() {
		var (
			rec       model.PredictionRecord
			created   string
			applicant string
		)
		if err := rows.Scan(&rec.ID, &created, &applicant, &rec.Percent, &rec.Label); err != nil {
			return nil, err
		}
		rec.CreatedAt, _ = time.Parse(createdLayout, created)
		if err := json.Unmarshal([]byte(applicant), &rec.Applicant); err != nil {
			return nil, fmt.Errorf("decoding applicant %s: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PredictionCount returns the number of recorded predictions.
func (c *Cache) PredictionCount(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&n)
	return n, err
}

package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/RMahshie/genesis/internal/repository"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/google/uuid"
)

//go:embed schema.sql
var schema string

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *sql.DB
}

// NewPostgresPredictionRepository creates a new PostgreSQL prediction repository
func NewPostgresPredictionRepository(db *sql.DB) *PostgresPredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// EnsureSchema creates the journal table if it does not exist
func (r *PostgresPredictionRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Create inserts a new prediction record
func (r *PostgresPredictionRepository) Create(ctx context.Context, record *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (id, variant, frequency_ghz, s11_db, bandwidth_ghz,
			patch_length_mm, patch_width_mm, feed_width_mm, achievable_bandwidth_ghz,
			latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.Variant,
		record.Input.FrequencyGHz,
		record.Input.S11dB,
		record.Input.BandwidthGHz,
		record.Result.PatchLengthMM,
		record.Result.PatchWidthMM,
		record.Result.FeedWidthMM,
		record.Result.AchievableBandwidthGHz,
		record.LatencyMS,
		record.CreatedAt)

	return err
}

const selectColumns = `
		SELECT id, variant, frequency_ghz, s11_db, bandwidth_ghz,
			patch_length_mm, patch_width_mm, feed_width_mm, achievable_bandwidth_ghz,
			latency_ms, created_at
		FROM predictions`

// GetByID retrieves a prediction by ID
func (r *PostgresPredictionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ListRecent retrieves the newest predictions
func (r *PostgresPredictionRepository) ListRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*models.PredictionRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	err := s.Scan(
		&record.ID,
		&record.Variant,
		&record.Input.FrequencyGHz,
		&record.Input.S11dB,
		&record.Input.BandwidthGHz,
		&record.Result.PatchLengthMM,
		&record.Result.PatchWidthMM,
		&record.Result.FeedWidthMM,
		&record.Result.AchievableBandwidthGHz,
		&record.LatencyMS,
		&record.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

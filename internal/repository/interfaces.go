package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/genesis/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// PredictionRepository defines the interface for the prediction journal
type PredictionRepository interface {
	Create(ctx context.Context, record *models.PredictionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PredictionRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.PredictionRecord, error)
}

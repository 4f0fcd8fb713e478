package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/RMahshie/genesis/internal/repository"
	"github.com/RMahshie/genesis/pkg/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupDatabase starts PostgreSQL and applies the journal schema
func setupDatabase(t *testing.T) *PostgresPredictionRepository {
	t.Helper()
	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("genesis_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(ctx))
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewPostgresPredictionRepository(db)
	require.NoError(t, repo.EnsureSchema(ctx))
	// Applying twice must be harmless
	require.NoError(t, repo.EnsureSchema(ctx))
	return repo
}

func record(at time.Time, freq float64) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:      uuid.NewString(),
		Variant: "A",
		Input:   models.SpecInput{FrequencyGHz: freq, S11dB: -20, BandwidthGHz: 1},
		Result: models.GeometryResult{
			PatchLengthMM:          1.234,
			PatchWidthMM:           0.987,
			FeedWidthMM:            0.321,
			AchievableBandwidthGHz: 1.05,
		},
		LatencyMS: 0.42,
		CreatedAt: at,
	}
}

func TestPredictionRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	repo := setupDatabase(t)
	ctx := context.Background()

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	first := record(base, 37.5)
	second := record(base.Add(time.Minute), 38.0)
	third := record(base.Add(2*time.Minute), 39.5)
	for _, r := range []*models.PredictionRecord{first, second, third} {
		require.NoError(t, repo.Create(ctx, r))
	}

	t.Run("get by id", func(t *testing.T) {
		got, err := repo.GetByID(ctx, uuid.MustParse(second.ID))
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
		assert.Equal(t, second.Input, got.Input)
		assert.Equal(t, second.Result, got.Result)
		assert.Equal(t, second.LatencyMS, got.LatencyMS)
		assert.True(t, second.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("duplicate id", func(t *testing.T) {
		assert.Error(t, repo.Create(ctx, first))
	})

	t.Run("newest first", func(t *testing.T) {
		got, err := repo.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, third.ID, got[0].ID)
		assert.Equal(t, second.ID, got[1].ID)

		all, err := repo.ListRecent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

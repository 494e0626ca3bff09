package chart

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"astro-server/internal/shared/errors"
)

// Repository archives computed charts in postgres. The chart payload
// is stored as JSON since charts are immutable value objects that are
// only ever read back whole.
type Repository struct {
	db *sql.DB
}

// NewRepository returns nil when the database is disabled; callers
// treat a nil repository as "no archive".
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		return nil
	}
	logger := slog.With("component", "chart_repository", "operation", "init")
	logger.Debug("Initializing chart repository")
	return &Repository{db: db}
}

// newChartID mints the external chart identifier.
func newChartID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "chart-" + raw[:8]
}

// Save stores a chart under a freshly minted ID and returns the copy
// carrying that ID.
func (r *Repository) Save(ctx context.Context, c *Chart) (*Chart, error) {
	id := newChartID()
	logger := slog.With("component", "chart_repository", "operation", "save", "chart_id", id)

	stored := *c
	stored.ID = id
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(&stored)
	if err != nil {
		return nil, errors.WrapInternal("failed to serialize chart", err)
	}

	query := `
		INSERT INTO charts (id, cache_key, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, stored.ID, stored.CacheKey, payload, stored.CreatedAt); err != nil {
		logger.Error("Failed to save chart", "error", err)
		return nil, fmt.Errorf("failed to save chart: %w", err)
	}

	logger.Info("Chart archived")
	return &stored, nil
}

// GetByID loads an archived chart.
func (r *Repository) GetByID(ctx context.Context, id string) (*Chart, error) {
	logger := slog.With("component", "chart_repository", "operation", "get_by_id", "chart_id", id)
	logger.Debug("Loading chart")

	query := `SELECT payload FROM charts WHERE id = $1`

	var payload []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("chart %s not found", id)
	}
	if err != nil {
		logger.Error("Failed to load chart", "error", err)
		return nil, fmt.Errorf("failed to load chart: %w", err)
	}

	var c Chart
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, errors.WrapInternal("stored chart payload is corrupt", err)
	}
	return &c, nil
}

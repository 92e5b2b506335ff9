package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"motorent-bot/model"
)

// FleetAPI is the slice of the sheet client the repository needs.
type FleetAPI interface {
	ReadAll(ctx context.Context) ([]map[string]string, error)
	UpdateRow(ctx context.Context, row int, fields map[string]string) error
}

// Repository is a read-through snapshot cache over the fleet worksheet.
// All reads go through one mutex held across the whole check-or-fetch
// sequence so concurrent conversations never trigger duplicate fetches.
type Repository struct {
	api FleetAPI
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	snapshot  []model.Bike
	fetchedAt time.Time
}

// NewRepository builds a repository with the given snapshot TTL.
func NewRepository(api FleetAPI, ttl time.Duration) *Repository {
	return &Repository{api: api, ttl: ttl, now: time.Now}
}

// GetAll returns the fleet snapshot, refreshing it when the cache is
// older than the TTL or forceRefresh is set.
func (r *Repository) GetAll(ctx context.Context, forceRefresh bool) ([]model.Bike, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !forceRefresh && r.snapshot != nil && !r.fetchedAt.IsZero() {
		if r.now().Sub(r.fetchedAt) < r.ttl {
			return r.snapshot, nil
		}
	}

	rows, err := r.api.ReadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch fleet: %w", err)
	}

	bikes := make([]model.Bike, 0, len(rows))
	for i, row := range rows {
		bikes = append(bikes, model.BikeFromRow(i+2, row))
	}
	r.snapshot = bikes
	r.fetchedAt = r.now()
	slog.Debug("fleet snapshot refreshed", "records", len(bikes))
	return r.snapshot, nil
}

// Get returns the record identified by its sheet row number.
func (r *Repository) Get(ctx context.Context, row int) (model.Bike, error) {
	bikes, err := r.GetAll(ctx, false)
	if err != nil {
		return model.Bike{}, err
	}
	for _, b := range bikes {
		if b.Row == row {
			return b, nil
		}
	}
	return model.Bike{}, fmt.Errorf("no record at row %d", row)
}

// ByStatus filters the snapshot by exact status.
func (r *Repository) ByStatus(ctx context.Context, status string) ([]model.Bike, error) {
	bikes, err := r.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []model.Bike
	for _, b := range bikes {
		if b.Status == status {
			out = append(out, b)
		}
	}
	return out, nil
}

// ByBrand filters the snapshot by brand token and status.
func (r *Repository) ByBrand(ctx context.Context, brand, status string) ([]model.Bike, error) {
	if brand == "" {
		return nil, nil
	}
	bikes, err := r.GetAll(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []model.Bike
	for _, b := range bikes {
		if b.Status == status && b.MatchesBrand(brand) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Update writes the given fields for one row and invalidates the cache so
// the next read sees the change regardless of TTL. Backend errors
// propagate uninterpreted; no retry happens at this layer.
func (r *Repository) Update(ctx context.Context, row int, fields map[string]string) error {
	if err := r.api.UpdateRow(ctx, row, fields); err != nil {
		return err
	}
	r.Invalidate()
	return nil
}

// Invalidate forces the next read to fetch a fresh snapshot.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.fetchedAt = time.Time{}
	r.mu.Unlock()
	slog.Debug("fleet cache invalidated")
}

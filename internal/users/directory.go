// Package users keeps a small in-memory mirror of the external worker
// directory for assignment dropdowns. The directory changes rarely, so
// a TTL-guarded fetch-once is enough.
package users

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/zumar-garment/zumar-orderdesk/internal/upstream"
)

// API is the slice of the upstream client this directory uses.
type API interface {
	GetUsers(ctx context.Context) ([]upstream.User, error)
}

// Directory caches the worker list with a refresh interval. A failed
// refresh keeps serving the previous list.
type Directory struct {
	api    API
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	users     []upstream.User
	fetchedAt time.Time
	now       func() time.Time
}

func NewDirectory(api API, ttl time.Duration, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		api:    api,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Workers returns the cached directory, refreshing it when stale.
func (d *Directory) Workers(ctx context.Context) ([]upstream.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.users != nil && d.now().Sub(d.fetchedAt) < d.ttl {
		return append([]upstream.User(nil), d.users...), nil
	}

	users, err := d.api.GetUsers(ctx)
	if err != nil {
		if d.users != nil {
			d.logger.Warn("refresh direktori pekerja gagal, pakai data lama", slog.Any("error", err))
			return append([]upstream.User(nil), d.users...), nil
		}
		return nil, err
	}
	d.users = users
	d.fetchedAt = d.now()
	return append([]upstream.User(nil), d.users...), nil
}

// Name resolves a worker id to a display name.
func (d *Directory) Name(ctx context.Context, workerID string) string {
	users, err := d.Workers(ctx)
	if err != nil {
		return workerID
	}
	for _, u := range users {
		if u.ID == workerID {
			return u.Name
		}
	}
	return workerID
}

// Invalidate forces the next read to refetch.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = nil
	d.fetchedAt = time.Time{}
}

// Package store provides read-mostly data access over the activity log and
// the user directory.
//
// ActivityStore owns the activity_logs table; the user directory has a
// Postgres implementation (UserStore) and a Redis one (RedisUserStore).
// Every error leaving this package wraps models.ErrDataSourceUnavailable.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for all Postgres-backed stores.
// Embed this in each store struct.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout. A shorter
// caller deadline still wins.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}

// beginTx starts a read-write transaction.
func (b *Base) beginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := b.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}

	return tx, nil
}

// Ping measures a round trip to the database.
func (b *Base) Ping(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	return b.Pool.HealthCheck(ctx)
}

// CheckSchema confirms the migrated activity_logs table is queryable.
func (b *Base) CheckSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := b.Pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM activity_logs LIMIT 1)").Scan(&exists); err != nil {
		return fmt.Errorf("checking schema: %w", err)
	}

	return nil
}

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

var _ domain.UserDirectory = (*UserStore)(nil)

// userColumns lists the columns selected for user queries.
const userColumns = `id, username, email, role, is_active, login_count,
	last_login_at, failed_login_attempts, locked_until, created_at`

// UserStore reads the users table.
type UserStore struct {
	Base
}

// NewUserStore creates a UserStore.
func NewUserStore(base Base) *UserStore {
	return &UserStore{Base: base}
}

// Name identifies the backend in connectivity probes.
func (s *UserStore) Name() string { return "postgres" }

func scanUser(row pgx.CollectableRow) (models.UserSnapshot, error) {
	var u models.UserSnapshot

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.IsActive,
		&u.LoginCount,
		&u.LastLoginAt,
		&u.FailedLoginAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
	)

	return u, err
}

// ListUsers returns users matching q ordered by creation time.
func (s *UserStore) ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserSnapshot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var conditions []string
	var args []any

	if q.CreatedSince != nil {
		args = append(args, *q.CreatedSince)
		conditions = append(conditions, "created_at >= "+placeholder(len(args)))
	}
	if q.FailedAttemptsOnly {
		conditions = append(conditions, "failed_login_attempts > 0")
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	rows, err := s.Pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM users %s ORDER BY created_at, id", userColumns, where),
		args...,
	)
	if err != nil {
		return nil, models.Unavailable("listing users", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, models.Unavailable("scanning users", err)
	}

	return users, nil
}

// GetUsers looks up users by ID. IDs with no matching user are absent from the map.
func (s *UserStore) GetUsers(ctx context.Context, ids []string) (map[string]*models.UserSnapshot, error) {
	out := make(map[string]*models.UserSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = ANY($1)", userColumns),
		ids,
	)
	if err != nil {
		return nil, models.Unavailable("looking up users", err)
	}

	users, err := pgx.CollectRows(rows, scanUser)
	if err != nil {
		return nil, models.Unavailable("scanning users", err)
	}

	for i := range users {
		out[users[i].ID] = &users[i]
	}

	return out, nil
}

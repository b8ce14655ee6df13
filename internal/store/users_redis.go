package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/auditlens/internal/domain"
	"github.com/persistorai/auditlens/internal/models"
)

var _ domain.UserDirectory = (*RedisUserStore)(nil)

// Redis keys for the user directory mirror.
const (
	redisUserKeyPrefix  = "user:"
	redisUsersByCreated = "users:created"
)

// RedisUserStore reads user snapshots mirrored into Redis. Each user is a JSON
// document under user:<id>, indexed by creation time in the users:created sorted set.
type RedisUserStore struct {
	client *redis.Client
	log    *logrus.Logger
}

// NewRedisUserStore creates a RedisUserStore over an existing client.
func NewRedisUserStore(client *redis.Client, log *logrus.Logger) *RedisUserStore {
	return &RedisUserStore{client: client, log: log}
}

// NewRedisClient parses a redis:// or rediss:// URL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close() //nolint:errcheck // closing after failed ping.

		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return client, nil
}

// Name identifies the backend in connectivity probes.
func (s *RedisUserStore) Name() string { return "redis" }

// Ping checks the Redis connection.
func (s *RedisUserStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// PutUser writes or replaces a user snapshot.
func (s *RedisUserStore) PutUser(ctx context.Context, u *models.UserSnapshot) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshaling user: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisUserKeyPrefix+u.ID, data, 0)
	pipe.ZAdd(ctx, redisUsersByCreated, redis.Z{
		Score:  float64(u.CreatedAt.UnixMilli()),
		Member: u.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return models.Unavailable("storing user", err)
	}

	return nil
}

// ListUsers returns users matching q ordered by creation time.
func (s *RedisUserStore) ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserSnapshot, error) {
	lower := "-inf"
	if q.CreatedSince != nil {
		lower = strconv.FormatInt(q.CreatedSince.UnixMilli(), 10)
	}

	ids, err := s.client.ZRangeByScore(ctx, redisUsersByCreated, &redis.ZRangeBy{Min: lower, Max: "+inf"}).Result()
	if err != nil {
		return nil, models.Unavailable("listing users", err)
	}

	byID, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	users := make([]models.UserSnapshot, 0, len(byID))
	for _, u := range byID {
		if q.FailedAttemptsOnly && u.FailedLoginAttempts <= 0 {
			continue
		}
		users = append(users, *u)
	}

	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})

	return users, nil
}

// GetUsers looks up users by ID. IDs with no matching user are absent from the map.
func (s *RedisUserStore) GetUsers(ctx context.Context, ids []string) (map[string]*models.UserSnapshot, error) {
	return s.load(ctx, ids)
}

func (s *RedisUserStore) load(ctx context.Context, ids []string) (map[string]*models.UserSnapshot, error) {
	out := make(map[string]*models.UserSnapshot, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisUserKeyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, models.Unavailable("loading users", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue // missing key
		}

		var u models.UserSnapshot
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.WithError(err).WithField("user_id", ids[i]).Warn("skipping malformed user snapshot")
			continue
		}
		out[u.ID] = &u
	}

	return out, nil
}

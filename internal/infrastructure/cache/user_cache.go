// Package cache wraps a user repository with a Redis read-through cache for id lookups.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	"github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

// cachedUser never includes the password digest.
type cachedUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func userKey(id string) string {
	return "user:profile:" + id
}

// UserRepository caches GetByID results. GetByEmail always reaches the backend
// because login needs the current digest. Redis failures fall through.
// Delete evicts the cached entry; rows removed behind the cache stay visible
// to GetByID for at most the TTL.
type UserRepository struct {
	next   repository.UserRepository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewUserRepository(next repository.UserRepository, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) *UserRepository {
	return &UserRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	return r.next.Create(ctx, u)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.next.GetByEmail(ctx, email)
}

// GetByID returns users without the Password field on a cache hit.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if r.rdb == nil || r.ttl <= 0 {
		return r.next.GetByID(ctx, id)
	}
	key := userKey(id)
	var cu cachedUser
	found, err := helpers.RedisGetJSON(ctx, r.rdb, key, &cu)
	if err != nil {
		r.warn(err, key, "redis get failed")
	} else if found {
		return &entity.User{ID: cu.ID, Name: cu.Name, Email: cu.Email, CreatedAt: cu.CreatedAt, UpdatedAt: cu.UpdatedAt}, nil
	}

	u, err := r.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cu = cachedUser{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if err := helpers.RedisSetJSON(ctx, r.rdb, key, cu, r.ttl); err != nil {
		r.warn(err, key, "redis set failed")
	}
	return u, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	err := r.next.Delete(ctx, id)
	if r.rdb != nil {
		key := userKey(id)
		if dErr := helpers.RedisDel(ctx, r.rdb, key); dErr != nil {
			r.warn(dErr, key, "redis del failed")
		}
	}
	return err
}

func (r *UserRepository) warn(err error, key, msg string) {
	if r.logger != nil {
		r.logger.WithError(err).WithField("key", key).Warn(msg)
	}
}

var _ repository.UserRepository = (*UserRepository)(nil)

package application

import (
	"context"
	"strings"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
)

// Hasher turns a plaintext password into a salted digest and checks one against it.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, digest string) bool
}

// NewUser is the input to UserStore.Create. Password is plaintext.
type NewUser struct {
	Name     string
	Email    string
	Password string
}

// UserStore wraps a repository so that raw passwords never reach persistence.
type UserStore struct {
	Repo   repo.UserRepository
	Hasher Hasher
}

func NewUserStore(r repo.UserRepository, h Hasher) *UserStore {
	return &UserStore{Repo: r, Hasher: h}
}

// NormalizeEmail trims and lowercases an address before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail returns repository.ErrNotFound when no user has the address.
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.Repo.GetByEmail(ctx, NormalizeEmail(email))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if strings.TrimSpace(id) == "" {
		return nil, repo.ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Create hashes the password and inserts the user. A taken email surfaces as
// repository.ErrDuplicateEmail from the backend.
func (s *UserStore) Create(ctx context.Context, in NewUser) (*entity.User, error) {
	digest, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    NormalizeEmail(in.Email),
		Password: digest,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a user. Cached lookups for the id are evicted by the cache layer.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return repo.ErrNotFound
	}
	return s.Repo.Delete(ctx, id)
}

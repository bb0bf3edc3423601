package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-account-service/pkg/helpers"
)

func newTestStore() (*UserStore, *memory.UserRepository) {
	r := memory.NewUserRepository()
	return NewUserStore(r, helpers.NewBcryptHasher(bcrypt.MinCost)), r
}

// recordingRepo captures what reaches persistence.
type recordingRepo struct {
	repo.UserRepository
	created []entity.User
}

func (r *recordingRepo) Create(ctx context.Context, u *entity.User) error {
	r.created = append(r.created, *u)
	return r.UserRepository.Create(ctx, u)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) { return "", errors.New("hash failed") }
func (failingHasher) Verify(string, string) bool  { return false }

func TestUserStore_CreateHashesBeforeInsert(t *testing.T) {
	rec := &recordingRepo{UserRepository: memory.NewUserRepository()}
	s := NewUserStore(rec, helpers.NewBcryptHasher(bcrypt.MinCost))

	u, err := s.Create(context.Background(), NewUser{Name: "  Juan ", Email: " Juan@Example.COM ", Password: "secret1"})
	require.NoError(t, err)

	require.Len(t, rec.created, 1)
	assert.NotEqual(t, "secret1", rec.created[0].Password)
	assert.True(t, s.Hasher.Verify("secret1", rec.created[0].Password))
	assert.Equal(t, "Juan", u.Name)
	assert.Equal(t, "juan@example.com", u.Email)
	assert.NotEmpty(t, u.ID)
}

func TestUserStore_FindNormalizesEmail(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, NewUser{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	got, err := s.FindByEmail(ctx, "  ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	got, err = s.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestUserStore_NotFound(t *testing.T) {
	s, _ := newTestStore()

	_, err := s.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = s.FindByID(context.Background(), "")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s, r := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, NewUser{Name: "A", Email: "dup@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = s.Create(ctx, NewUser{Name: "B", Email: "DUP@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, repo.ErrDuplicateEmail)
	assert.Equal(t, 1, r.Count())
}

func TestUserStore_HashFailureSkipsInsert(t *testing.T) {
	r := memory.NewUserRepository()
	s := NewUserStore(r, failingHasher{})

	_, err := s.Create(context.Background(), NewUser{Name: "A", Email: "a@example.com", Password: "secret1"})
	assert.Error(t, err)
	assert.Equal(t, 0, r.Count())
}

func TestUserStore_Delete(t *testing.T) {
	r := memory.NewUserRepository()
	s := NewUserStore(r, helpers.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()

	u, err := s.Create(ctx, NewUser{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, u.ID))
	_, err = s.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	assert.ErrorIs(t, s.Delete(ctx, u.ID), repo.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "  "), repo.ErrNotFound)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-account-service/internal/infrastructure/memory"
	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/helpers"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
)

type fakePublisher struct {
	mu   sync.Mutex
	err  error
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs = append(p.jobs, job)
	}
	return p.err
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls map[string]int
}

func (r *fakeRecorder) RecordAuth(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls == nil {
		r.calls = map[string]int{}
	}
	r.calls[operation+"/"+outcome]++
}

func (r *fakeRecorder) RecordHTTP(string, string, int, time.Duration) {}

type brokenIssuer struct{}

func (brokenIssuer) Issue(string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signing failed")
}

type fixture struct {
	svc  *AuthService
	repo *memory.UserRepository
	jwt  *helpers.JWTManager
	pub  *fakePublisher
	rec  *fakeRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	r := memory.NewUserRepository()
	store := NewUserStore(r, helpers.NewBcryptHasher(bcrypt.MinCost))
	jwt := helpers.NewJWTManager("test-secret", time.Hour, "test")
	pub := &fakePublisher{}
	rec := &fakeRecorder{}
	svc := NewAuthService(store, jwt, rec, pub, helpers.NewNopLogger(), "Acme")
	return &fixture{svc: svc, repo: r, jwt: jwt, pub: pub, rec: rec}
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperror.KindOf(err), err.Error())
}

func TestRegister_ThenLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "Juan", Email: "juan@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Juan", reg.User.Name)
	assert.Equal(t, "juan@x.com", reg.User.Email)

	claims, err := f.jwt.Verify(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	login, err := f.svc.Login(ctx, LoginInput{Email: "juan@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User, login.User)

	claims, err = f.jwt.Verify(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	_, err = f.svc.Login(ctx, LoginInput{Email: "juan@x.com", Password: "wrong"})
	requireKind(t, err, apperror.KindInvalidCredentials)
}

func TestRegister_StoresDigestOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	stored, err := f.repo.GetByID(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.True(t, f.svc.Users.Hasher.Verify("secret1", stored.Password))
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"missing name":     {Email: "a@example.com", Password: "secret1"},
		"blank name":       {Name: "   ", Email: "a@example.com", Password: "secret1"},
		"missing email":    {Name: "A", Password: "secret1"},
		"malformed email":  {Name: "A", Email: "not-an-email", Password: "secret1"},
		"missing password": {Name: "A", Email: "a@example.com"},
		"blank email":      {Name: "A", Email: " \t ", Password: "secret1"},
		"short password":   {Name: "A", Email: "a@example.com", Password: "12345"},
		"73 byte password": {Name: "A", Email: "a@example.com", Password: strings.Repeat("a", 73)},
		"74 byte runes":    {Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 37)},
		"80 byte runes":    {Name: "A", Email: "a@example.com", Password: strings.Repeat("é", 40)},
	}
	for name, in := range cases {
		_, err := f.svc.Register(ctx, in)
		requireKind(t, err, apperror.KindValidation)
		assert.NotEmpty(t, err.(*apperror.Error).Details, name)
	}
	assert.Equal(t, 0, f.repo.Count())
}

func TestRegister_PasswordLengthBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	passwords := []string{
		"123456",
		strings.Repeat("a", 72),
		"ééé",
		strings.Repeat("é", 36),
	}
	for i, pw := range passwords {
		email := fmt.Sprintf("user%d@example.com", i)
		_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: email, Password: pw})
		require.NoError(t, err, "len=%d", len(pw))

		_, err = f.svc.Login(ctx, LoginInput{Email: email, Password: pw})
		require.NoError(t, err, "len=%d", len(pw))
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "dup@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "B", Email: "DUP@example.com", Password: "secret2"})
	requireKind(t, err, apperror.KindConflict)
	assert.Equal(t, 1, f.repo.Count())

	// the original password still works
	_, err = f.svc.Login(ctx, LoginInput{Email: "dup@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestRegister_ConcurrentSameEmail(t *testing.T) {
	f := newFixture(t)
	const n = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(context.Background(), RegisterInput{Name: "Racer", Email: "race@example.com", Password: "secret1"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.KindOf(err) == apperror.KindConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, f.repo.Count())
}

func TestLogin_UnknownEmailMatchesWrongPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPw := f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "nope123"})
	_, unknown := f.svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "secret1"})

	requireKind(t, wrongPw, apperror.KindInvalidCredentials)
	requireKind(t, unknown, apperror.KindInvalidCredentials)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
}

// flakyHasher fails its first Hash call and records the digests it verifies against.
type flakyHasher struct {
	mu       sync.Mutex
	hashes   int
	verified []string
}

func (h *flakyHasher) Hash(pw string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hashes++
	if h.hashes == 1 {
		return "", errors.New("entropy unavailable")
	}
	return "digest:" + pw, nil
}

func (h *flakyHasher) Verify(pw, digest string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.verified = append(h.verified, digest)
	return digest == "digest:"+pw
}

func TestNewAuthService_PreparesTimingPad(t *testing.T) {
	h := &flakyHasher{}
	h.hashes = 1 // skip the failure
	svc := NewAuthService(NewUserStore(memory.NewUserRepository(), h), brokenIssuer{}, nil, nil, helpers.NewNopLogger(), "Acme")
	assert.Equal(t, "digest:"+timingPad, svc.pad)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret1"})
	requireKind(t, err, apperror.KindInvalidCredentials)
	assert.Equal(t, []string{"digest:" + timingPad}, h.verified)
}

func TestNewAuthService_TimingPadFailureIsLoggedAndRetried(t *testing.T) {
	h := &flakyHasher{}
	logger, hook := logtest.NewNullLogger()
	svc := NewAuthService(NewUserStore(memory.NewUserRepository(), h), brokenIssuer{}, nil, nil, logger, "Acme")

	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "timing pad")
	assert.Empty(t, svc.pad)

	_, err := svc.Login(context.Background(), LoginInput{Email: "ghost@example.com", Password: "secret1"})
	requireKind(t, err, apperror.KindInvalidCredentials)
	require.Len(t, h.verified, 1)
	assert.NotEmpty(t, h.verified[0])
}

func TestLogin_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@example.com"})
	requireKind(t, err, apperror.KindValidation)

	_, err = f.svc.Login(context.Background(), LoginInput{Password: "secret1"})
	requireKind(t, err, apperror.KindValidation)
}

func TestLogin_TokensDifferButBothValid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "Juan", Email: "juan@x.com", Password: "secret1"})
	require.NoError(t, err)
	login, err := f.svc.Login(ctx, LoginInput{Email: "juan@x.com", Password: "secret1"})
	require.NoError(t, err)

	assert.NotEqual(t, reg.Token, login.Token)
	_, err = f.jwt.Verify(reg.Token)
	assert.NoError(t, err)
	_, err = f.jwt.Verify(login.Token)
	assert.NoError(t, err)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	pu, err := f.svc.GetCurrentUser(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, reg.User, pu)

	require.NoError(t, f.repo.Delete(ctx, reg.User.ID))
	_, err = f.svc.GetCurrentUser(ctx, reg.User.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestIssueFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.svc.Tokens = brokenIssuer{}

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	requireKind(t, err, apperror.KindInternal)
}

func TestStoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	requireKind(t, err, apperror.KindInternal)

	_, err = f.svc.GetCurrentUser(ctx, "any")
	requireKind(t, err, apperror.KindInternal)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "Juan", Email: "juan@x.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, LoginInput{Email: "juan@x.com", Password: "secret1", IP: "203.0.113.7", UserAgent: "curl/8.0"})
	require.NoError(t, err)
	_, _ = f.svc.Login(ctx, LoginInput{Email: "juan@x.com", Password: "wrong"})

	require.Len(t, f.pub.jobs, 2)
	assert.Equal(t, mailtpl.Welcome, f.pub.jobs[0].Template)
	assert.Equal(t, "juan@x.com", f.pub.jobs[0].To)
	assert.Equal(t, mailtpl.LoginNotification, f.pub.jobs[1].Template)
	assert.Equal(t, "203.0.113.7", f.pub.jobs[1].Data["IP"])
	for _, job := range f.pub.jobs {
		assert.NotContains(t, job.Data, "Password")
	}
}

func TestNotificationFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")

	res, err := f.svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
}

func TestMetricsOutcomes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _ = f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	_, _ = f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@example.com", Password: "secret1"})
	_, _ = f.svc.Login(ctx, LoginInput{Email: "a@example.com", Password: "bad-pass"})

	assert.Equal(t, 1, f.rec.calls["register/success"])
	assert.Equal(t, 1, f.rec.calls["register/conflict"])
	assert.Equal(t, 1, f.rec.calls["login/invalid_credentials"])
}

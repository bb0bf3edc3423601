package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-account-service/internal/domain/entity"
	repo "github.com/oksasatya/go-account-service/internal/domain/repository"
	"github.com/oksasatya/go-account-service/internal/metrics"
	"github.com/oksasatya/go-account-service/pkg/apperror"
	"github.com/oksasatya/go-account-service/pkg/mailer"
	mailtpl "github.com/oksasatya/go-account-service/pkg/mailer/templates"
	"github.com/oksasatya/go-account-service/pkg/validation"
)

const (
	msgInvalidInput       = "invalid input"
	msgEmailTaken         = "email already registered"
	msgInvalidCredentials = "invalid email or password"
	msgUserNotFound       = "user not found"

	notifyTimeout = 3 * time.Second
	timingPad     = "account-service-timing-pad"
)

// TokenIssuer mints a bearer token for a user id.
type TokenIssuer interface {
	Issue(userID string) (token string, expiresAt time.Time, err error)
}

// Publisher queues a JSON message; RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,pwd"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`

	// request metadata for the login notification
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

type AuthResult struct {
	User      entity.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"-"`
}

type AuthService struct {
	Users    *UserStore
	Tokens   TokenIssuer
	Metrics  metrics.Recorder
	Notifier Publisher // nil disables account emails
	Logger   *logrus.Logger
	AppName  string

	now func() time.Time
	// bcrypt digest compared against on unknown-email logins
	pad string
}

func NewAuthService(users *UserStore, tokens TokenIssuer, rec metrics.Recorder, notifier Publisher, logger *logrus.Logger, appName string) *AuthService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &AuthService{
		Users:    users,
		Tokens:   tokens,
		Metrics:  rec,
		Notifier: notifier,
		Logger:   logger,
		AppName:  appName,
		now:      time.Now,
	}
	pad, err := users.Hasher.Hash(timingPad)
	if err != nil {
		logger.WithError(err).Error("failed to prepare login timing pad; will retry per request")
	}
	s.pad = pad
	return s
}

// Register creates an account and signs the new user in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	defer func() { s.record("register", err) }()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if vErr := validation.Struct(in); vErr != nil {
		return nil, apperror.Validation(msgInvalidInput, validation.ToDetails(vErr))
	}

	// fast path; the store's unique constraint below is what actually decides
	if _, lErr := s.Users.FindByEmail(ctx, in.Email); lErr == nil {
		return nil, apperror.Conflict(msgEmailTaken)
	} else if !errors.Is(lErr, repo.ErrNotFound) {
		return nil, apperror.Internal("failed to look up user", lErr)
	}

	u, cErr := s.Users.Create(ctx, NewUser{Name: in.Name, Email: in.Email, Password: in.Password})
	if errors.Is(cErr, repo.ErrDuplicateEmail) {
		return nil, apperror.Conflict(msgEmailTaken)
	}
	if cErr != nil {
		return nil, apperror.Internal("failed to create user", cErr)
	}

	res, err = s.issue(u)
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID}).Info("user registered")
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(s.AppName, u.Name, u.Email),
	})
	return res, nil
}

// Login verifies credentials. Unknown email and wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	defer func() { s.record("login", err) }()

	in.Email = NormalizeEmail(in.Email)
	if vErr := validation.Struct(in); vErr != nil {
		return nil, apperror.Validation(msgInvalidInput, validation.ToDetails(vErr))
	}

	u, lErr := s.Users.FindByEmail(ctx, in.Email)
	if errors.Is(lErr, repo.ErrNotFound) {
		// keep timing close to the wrong-password path
		s.Users.Hasher.Verify(in.Password, s.padDigest())
		return nil, apperror.InvalidCredentials(msgInvalidCredentials)
	}
	if lErr != nil {
		return nil, apperror.Internal("failed to look up user", lErr)
	}
	if !s.Users.Hasher.Verify(in.Password, u.Password) {
		return nil, apperror.InvalidCredentials(msgInvalidCredentials)
	}

	res, err = s.issue(u)
	if err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "ip": in.IP}).Info("user logged in")
	s.notify(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.LoginNotification,
		Data: mailtpl.NewLoginNotificationData(s.AppName, u.Name, u.Email,
			mailtpl.WithIP(in.IP), mailtpl.WithUserAgent(in.UserAgent), mailtpl.WithTime(s.now())),
	})
	return res, nil
}

// GetCurrentUser loads the public view of an authenticated user.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (pu entity.PublicUser, err error) {
	defer func() { s.record("me", err) }()

	u, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return entity.PublicUser{}, apperror.NotFound(msgUserNotFound)
	}
	if err != nil {
		return entity.PublicUser{}, apperror.Internal("failed to load user", err)
	}
	return u.Public(), nil
}

func (s *AuthService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return nil, apperror.Internal("failed to issue token", err)
	}
	return &AuthResult{User: u.Public(), Token: token, ExpiresAt: exp}, nil
}

func (s *AuthService) notify(ctx context.Context, job mailer.EmailJob) {
	if s.Notifier == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := s.Notifier.PublishJSON(c, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("publish email job failed")
	}
}

func (s *AuthService) record(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = strings.ToLower(string(apperror.KindOf(err)))
	}
	s.Metrics.RecordAuth(operation, outcome)
	if err != nil && apperror.KindOf(err) == apperror.KindInternal {
		s.Logger.WithError(err).WithField("operation", operation).Error("auth operation failed")
	}
}

// padDigest falls back to hashing on the spot, which costs about as much as a verify.
func (s *AuthService) padDigest() string {
	if s.pad != "" {
		return s.pad
	}
	pad, err := s.Users.Hasher.Hash(timingPad)
	if err != nil {
		s.Logger.WithError(err).Warn("login timing pad unavailable")
	}
	return pad
}

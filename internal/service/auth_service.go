package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"panchayat/internal/apperr"
	"panchayat/internal/config"
	"panchayat/internal/ids"
	"panchayat/internal/mail"
	"panchayat/internal/models"
	"panchayat/internal/repository"
	"panchayat/internal/security"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid_credentials", "invalid credentials")
	ErrWrongPassword      = apperr.New(apperr.KindValidation, "wrong_password", "current password is incorrect")
	ErrInvalidResetToken  = apperr.New(apperr.KindValidation, "invalid_reset_token", "invalid or expired reset token")
	ErrMailDelivery       = apperr.New(apperr.KindInternal, "mail_delivery_failed", "could not send email")
)

type UserStore interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	FindByResetToken(ctx context.Context, digest []byte, now time.Time) (models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	UpdateProfile(ctx context.Context, id string, update models.ProfileUpdate) (models.User, error)
	UpdateRole(ctx context.Context, id string, role models.UserRole) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	SetResetToken(ctx context.Context, id string, digest []byte, expiry time.Time) error
	ClearResetToken(ctx context.Context, id string) error
}

type TokenIssuer interface {
	Issue(userID string, role models.UserRole) (string, error)
}

type Mailer interface {
	SendHTML(to, subject, htmlBody string) error
}

type Throttler interface {
	Allow(ctx context.Context, key string, window time.Duration) (bool, error)
}

type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	mailer   Mailer
	throttle Throttler
	cfg      *config.AppConfig
	hash     func(string) (string, error)
	now      func() time.Time
	log      zerolog.Logger
}

func NewAuthService(
	users UserStore,
	tokens TokenIssuer,
	mailer Mailer,
	throttle Throttler,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		throttle: throttle,
		cfg:      cfg,
		hash:     security.HashPassword,
		now:      time.Now,
		log:      log,
	}
}

// WithHasher replaces the password hashing function, e.g. with cheaper parameters.
func (s *AuthService) WithHasher(hash func(string) (string, error)) *AuthService {
	s.hash = hash
	return s
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

type AuthResult struct {
	Token string
	User  models.User
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the default role and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.Email = normalizeEmail(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || input.Name == "" {
		return AuthResult{}, apperr.Validation("name and email are required")
	}

	passwordHash, err := s.hash(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	user := models.User{
		ID:           ids.New(),
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
	}
	user, err = s.users.Create(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

// Login answers an unknown email and a wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return AuthResult{}, err
	}
	if !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Me(ctx context.Context, identity security.Identity) (models.User, error) {
	return s.users.GetByID(ctx, identity.UserID)
}

func (s *AuthService) UpdateProfile(ctx context.Context, identity security.Identity, update models.ProfileUpdate) (models.User, error) {
	if update.Empty() {
		return s.users.GetByID(ctx, identity.UserID)
	}
	if update.Email != nil {
		email := normalizeEmail(*update.Email)
		if email == "" {
			return models.User{}, apperr.Validation("email cannot be empty")
		}
		update.Email = &email
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.User{}, apperr.Validation("name cannot be empty")
		}
		update.Name = &name
	}
	return s.users.UpdateProfile(ctx, identity.UserID, update)
}

func (s *AuthService) ChangePassword(ctx context.Context, identity security.Identity, current, next string) error {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return err
	}

	ok, err := security.VerifyPassword(current, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrWrongPassword
	}

	passwordHash, err := s.hash(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, passwordHash)
}

// ForgotPassword mails a reset link when email belongs to a user. It reports success
// for unknown and throttled addresses alike.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperr.Validation("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.Debug().Msg("password reset requested for unknown email")
			return nil
		}
		return err
	}

	allowed, err := s.throttle.Allow(ctx, "reset:"+user.ID, s.cfg.Security.ResetThrottleWindow)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("reset throttle unavailable")
	} else if !allowed {
		s.log.Info().Str("user_id", user.ID).Msg("password reset throttled")
		return nil
	}

	token, digest, err := security.GenerateResetToken()
	if err != nil {
		return err
	}
	ttl := s.cfg.Security.ResetTokenTTL
	if err := s.users.SetResetToken(ctx, user.ID, digest, s.now().Add(ttl)); err != nil {
		return err
	}

	body, err := mail.ResetBody(user.Name, s.cfg.Mail.ResetURL, token, ttl.String())
	if err == nil {
		err = s.mailer.SendHTML(user.Email, mail.ResetSubject, body)
	}
	if err != nil {
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			s.log.Error().Err(clearErr).Str("user_id", user.ID).Msg("rollback reset token failed")
		}
		return apperr.Wrap(ErrMailDelivery, err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset mail sent")
	return nil
}

func (s *AuthService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.userByResetToken(ctx, token)
	return err
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.userByResetToken(ctx, token)
	if err != nil {
		return err
	}

	passwordHash, err := s.hash(password)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, passwordHash)
}

func (s *AuthService) userByResetToken(ctx context.Context, token string) (models.User, error) {
	if token == "" {
		return models.User{}, ErrInvalidResetToken
	}
	user, err := s.users.FindByResetToken(ctx, security.HashResetToken(token), s.now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return models.User{}, ErrInvalidResetToken
		}
		return models.User{}, err
	}
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.users.List(ctx, limit, offset)
}

// SetRole changes a user's role. Tokens already issued keep the old role until they expire.
func (s *AuthService) SetRole(ctx context.Context, userID string, role models.UserRole) (models.User, error) {
	if !role.Valid() {
		return models.User{}, apperr.Validation("unknown role")
	}
	return s.users.UpdateRole(ctx, userID, role)
}

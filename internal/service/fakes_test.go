package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"panchayat/internal/config"
	"panchayat/internal/models"
	"panchayat/internal/repository"
	"panchayat/internal/security"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]models.User
	errGet error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]models.User{}}
}

func (m *memUsers) Create(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.byID[user.ID] = user
	return user, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errGet != nil {
		return models.User{}, m.errGet
	}
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) FindByResetToken(_ context.Context, digest []byte, now time.Time) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ResetTokenHash != nil && bytes.Equal(u.ResetTokenHash, digest) && u.ResetTokenExpiry.After(now) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUsers) UpdateProfile(_ context.Context, id string, update models.ProfileUpdate) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	if update.Email != nil {
		for otherID, other := range m.byID {
			if otherID != id && other.Email == *update.Email {
				return models.User{}, repository.ErrEmailTaken
			}
		}
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Phone != nil {
		u.Phone = update.Phone
	}
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) UpdateRole(_ context.Context, id string, role models.UserRole) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	u.Role = role
	m.byID[id] = u
	return u, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	m.byID[id] = u
	return nil
}

func (m *memUsers) SetResetToken(_ context.Context, id string, digest []byte, expiry time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = digest
	u.ResetTokenExpiry = &expiry
	m.byID[id] = u
	return nil
}

func (m *memUsers) ClearResetToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	m.byID[id] = u
	return nil
}

type sentMail struct {
	To, Subject, Body string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (f *fakeMailer) SendHTML(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

type fakeThrottle struct {
	seen map[string]bool
	err  error
}

func (f *fakeThrottle) Allow(_ context.Context, key string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

var fastHashParams = security.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func fastHash(pw string) (string, error) {
	return security.HashPasswordWithParams(pw, fastHashParams)
}

var errBoom = errors.New("boom")

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Security: config.SecurityConfig{
			JWTSecret:           "test-secret",
			TokenTTL:            24 * time.Hour,
			ResetTokenTTL:       time.Hour,
			ResetThrottleWindow: time.Minute,
		},
		Mail: config.MailConfig{ResetURL: "http://portal.local/reset-password"},
	}
}

func discardLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

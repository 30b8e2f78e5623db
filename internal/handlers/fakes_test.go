package handlers

import (
	"bytes"
	"context"
	"sync"
	"time"

	"panchayat/internal/docstore"
	"panchayat/internal/models"
	"panchayat/internal/repository"
	"panchayat/internal/service"
)

type memUserStore struct {
	mu    sync.Mutex
	users map[string]models.User
}

func (m *memUserStore) Create(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.User{}, repository.ErrEmailTaken
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return user, nil
}

func (m *memUserStore) find(match func(models.User) bool) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	return m.find(func(u models.User) bool { return u.ID == id })
}

func (m *memUserStore) FindByResetToken(_ context.Context, digest []byte, now time.Time) (models.User, error) {
	return m.find(func(u models.User) bool {
		return u.ResetTokenHash != nil && bytes.Equal(u.ResetTokenHash, digest) && u.ResetTokenExpiry.After(now)
	})
}

func (m *memUserStore) List(context.Context, int, int) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memUserStore) update(id string, fn func(*models.User)) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	fn(&u)
	m.users[id] = u
	return u, nil
}

func (m *memUserStore) UpdateProfile(_ context.Context, id string, p models.ProfileUpdate) (models.User, error) {
	return m.update(id, func(u *models.User) {
		if p.Name != nil {
			u.Name = *p.Name
		}
		if p.Email != nil {
			u.Email = *p.Email
		}
		if p.Phone != nil {
			u.Phone = p.Phone
		}
	})
}

func (m *memUserStore) UpdateRole(_ context.Context, id string, role models.UserRole) (models.User, error) {
	return m.update(id, func(u *models.User) { u.Role = role })
}

func (m *memUserStore) UpdatePassword(_ context.Context, id string, hash string) error {
	_, err := m.update(id, func(u *models.User) {
		u.PasswordHash = hash
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
	})
	return err
}

func (m *memUserStore) SetResetToken(_ context.Context, id string, digest []byte, expiry time.Time) error {
	_, err := m.update(id, func(u *models.User) {
		u.ResetTokenHash = digest
		u.ResetTokenExpiry = &expiry
	})
	return err
}

func (m *memUserStore) ClearResetToken(_ context.Context, id string) error {
	_, err := m.update(id, func(u *models.User) {
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
	})
	return err
}

type memPollStore struct {
	mu    sync.Mutex
	polls map[string]models.Poll
}

func (m *memPollStore) Create(_ context.Context, poll models.Poll) (models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	poll.Version = 1
	m.polls[poll.ID] = poll
	return poll, nil
}

func (m *memPollStore) GetByID(_ context.Context, id string) (models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.polls[id]
	if !ok {
		return models.Poll{}, models.ErrPollNotFound
	}
	p.Options = append([]models.PollOption(nil), p.Options...)
	p.Votes = append([]models.Vote(nil), p.Votes...)
	return p, nil
}

func (m *memPollStore) List(context.Context, bool, int, int) ([]models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Poll{}
	for _, p := range m.polls {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPollStore) Save(_ context.Context, poll models.Poll) (models.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.polls[poll.ID]
	if !ok {
		return models.Poll{}, models.ErrPollNotFound
	}
	if stored.Version != poll.Version {
		return models.Poll{}, repository.ErrVersionConflict
	}
	poll.Version++
	m.polls[poll.ID] = poll
	return poll, nil
}

func (m *memPollStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.polls[id]; !ok {
		return models.ErrPollNotFound
	}
	delete(m.polls, id)
	return nil
}

type memDocStore[T any, P service.Record[T]] struct {
	mu   sync.Mutex
	docs map[string]T
}

func newDocStore[T any, P service.Record[T]]() *memDocStore[T, P] {
	return &memDocStore[T, P]{docs: map[string]T{}}
}

func (m *memDocStore[T, P]) Create(_ context.Context, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[P(doc).Metadata().ID.Hex()] = *doc
	return nil
}

func (m *memDocStore[T, P]) FindByKey(_ context.Context, key string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		var zero T
		return zero, docstore.ErrNotFound
	}
	return doc, nil
}

func (m *memDocStore[T, P]) FindMany(context.Context, docstore.Filter, docstore.Sort) ([]T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []T{}
	for _, doc := range m.docs {
		out = append(out, doc)
	}
	return out, nil
}

func (m *memDocStore[T, P]) UpdateByKey(_ context.Context, key string, doc *T) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return docstore.ErrNotFound
	}
	m.docs[key] = *doc
	return nil
}

func (m *memDocStore[T, P]) DeleteByKey(_ context.Context, key string) (T, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		var zero T
		return zero, docstore.ErrNotFound
	}
	delete(m.docs, key)
	return doc, nil
}

type recordingCleanup struct {
	mu   sync.Mutex
	keys []string
}

func (r *recordingCleanup) EnqueueObjectCleanup(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	return nil
}

type nopMailer struct{ sent int }

func (n *nopMailer) SendHTML(string, string, string) error {
	n.sent++
	return nil
}

type openThrottle struct{}

func (openThrottle) Allow(context.Context, string, time.Duration) (bool, error) { return true, nil }

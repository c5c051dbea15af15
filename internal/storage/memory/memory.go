package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"whisperbox/internal/models"
	"whisperbox/internal/storage"
)

// Repo is an in-memory implementation of the user and message stores.
// Tests run real services on top of it instead of mocks.
type Repo struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	messages map[int64][]models.Message
}

func NewRepo() *Repo {
	return &Repo{
		nextID:   1,
		users:    make(map[int64]models.User),
		messages: make(map[int64][]models.Message),
	}
}

func (r *Repo) SaveUser(
	_ context.Context,
	email, username string,
	passHash []byte,
	code string,
	expiry time.Time,
) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return 0, storage.ErrEmailTaken
		}
	}

	id := r.nextID
	r.nextID++

	r.users[id] = models.User{
		ID:               id,
		Email:            email,
		Username:         username,
		PassHash:         passHash,
		VerifyCode:       code,
		VerifyCodeExpiry: expiry,
		IsAccepting:      true,
	}

	return id, nil
}

func (r *Repo) ResetUnverified(
	_ context.Context,
	userID int64,
	passHash []byte,
	code string,
	expiry time.Time,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok || u.IsVerified {
		return nil
	}

	u.PassHash = passHash
	u.VerifyCode = code
	u.VerifyCodeExpiry = expiry
	r.users[userID] = u

	return nil
}

func (r *Repo) UserByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *Repo) UserByUsername(_ context.Context, username string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.find(func(u models.User) bool { return u.Username == username })
}

func (r *Repo) UserByIdentifier(_ context.Context, identifier string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.find(func(u models.User) bool {
		return u.Email == identifier || u.Username == identifier
	})
}

func (r *Repo) UserByID(_ context.Context, id int64) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return u, nil
}

func (r *Repo) HasVerifiedUsername(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Username == username && u.IsVerified {
			return true, nil
		}
	}

	return false, nil
}

func (r *Repo) SetVerified(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		u.IsVerified = true
		r.users[userID] = u
	}

	return nil
}

func (r *Repo) SetAccepting(_ context.Context, userID int64, accepting bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[userID]; ok {
		u.IsAccepting = accepting
		r.users[userID] = u
	}

	return nil
}

func (r *Repo) AppendMessage(_ context.Context, userID int64, msg models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.messages[userID] = append(r.messages[userID], msg)

	return nil
}

// MessagesByUser mirrors the SQL store's ordering: newest first.
func (r *Repo) MessagesByUser(_ context.Context, userID int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := make([]models.Message, len(r.messages[userID]))
	copy(msgs, r.messages[userID])

	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})

	return msgs, nil
}

func (r *Repo) find(match func(models.User) bool) (models.User, error) {
	for _, u := range r.users {
		if match(u) {
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

// Limiter is an in-memory stand-in for the redis attempt counter.
type Limiter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewLimiter() *Limiter {
	return &Limiter{counts: make(map[string]int64)}
}

func (l *Limiter) RegisterAttempt(_ context.Context, username string, _ time.Duration) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.counts[username]++

	return l.counts[username], nil
}

func (l *Limiter) ClearAttempts(_ context.Context, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.counts, username)

	return nil
}

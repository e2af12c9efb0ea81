package handlers

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inkwelljournal/inkwell/internal/domain/entities"
	"github.com/inkwelljournal/inkwell/internal/domain/repositories"
)

// memUserRepo is an in-memory UserRepository for handler tests
type memUserRepo struct {
	mu     sync.Mutex
	users  map[string]*entities.User
	nextID int
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*entities.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repositories.ErrDuplicateEmail
		}
		if existing.GoogleID != nil && user.GoogleID != nil && *existing.GoogleID == *user.GoogleID {
			return repositories.ErrDuplicateGoogleID
		}
	}
	if user.ID == "" {
		r.nextID++
		user.ID = "u" + strconv.Itoa(r.nextID)
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) GetByGoogleID(ctx context.Context, googleID string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.GoogleID != nil && *user.GoogleID == googleID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *memUserRepo) Update(ctx context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// memSessionRepo is an in-memory SessionRepository for handler tests
type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entities.LoginSession
	nextID   int
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*entities.LoginSession)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *entities.LoginSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if session.ID == "" {
		r.nextID++
		session.ID = "s" + strconv.Itoa(r.nextID)
	}
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) GetByID(ctx context.Context, id string) (*entities.LoginSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.IsExpired() {
		return nil, repositories.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, session := range r.sessions {
		if !session.ExpiresAt.After(before) {
			delete(r.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// memEntryRepo is an in-memory EntryRepository for handler tests
type memEntryRepo struct {
	mu      sync.Mutex
	entries map[string]*entities.Entry
	nextID  int
}

func newMemEntryRepo() *memEntryRepo {
	return &memEntryRepo{entries: make(map[string]*entities.Entry)}
}

func (r *memEntryRepo) Create(ctx context.Context, entry *entities.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == "" {
		r.nextID++
		entry.ID = "e" + strconv.Itoa(r.nextID)
	}
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *memEntryRepo) GetByID(ctx context.Context, id string) (*entities.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.entries[id]; ok {
		clone := *entry
		return &clone, nil
	}
	return nil, repositories.ErrEntryNotFound
}

func (r *memEntryRepo) Update(ctx context.Context, entry *entities.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[entry.ID]; !ok {
		return repositories.ErrEntryNotFound
	}
	clone := *entry
	r.entries[entry.ID] = &clone
	return nil
}

func (r *memEntryRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return repositories.ErrEntryNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *memEntryRepo) ListByUser(ctx context.Context, userID string, opts repositories.ListEntriesOptions) ([]*entities.Entry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var owned []*entities.Entry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			clone := *entry
			owned = append(owned, &clone)
		}
	}
	total := int64(len(owned))
	if opts.Offset >= len(owned) {
		return nil, total, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[opts.Offset:end], total, nil
}

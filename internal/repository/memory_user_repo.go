package repository

import (
	"context"
	"sync"
	"time"

	"science-chat/internal/domain"
)

// MemoryUserRepository guarda historiales en memoria; util para la CLI sin base y para tests.
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*memoryUser
}

type memoryUser struct {
	mu      sync.Mutex
	turns   []domain.Turn
	deleted bool
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*memoryUser)}
}

func (r *MemoryUserRepository) user(userID string, create bool) *memoryUser {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok && create {
		u = &memoryUser{}
		r.users[userID] = u
	}
	return u
}

func (r *MemoryUserRepository) FindUser(_ context.Context, userID string) ([]domain.Turn, bool, error) {
	u := r.user(userID, false)
	if u == nil {
		return nil, false, nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.deleted {
		return nil, false, nil
	}
	out := make([]domain.Turn, len(u.turns))
	copy(out, u.turns)
	return out, true, nil
}

func (r *MemoryUserRepository) AppendTurns(_ context.Context, userID string, turns []domain.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	// Un registro borrado entre la busqueda y el lock se descarta y se crea otro.
	for !r.appendTo(r.user(userID, true), userID, turns) {
	}
	return nil
}

func (r *MemoryUserRepository) appendTo(u *memoryUser, userID string, turns []domain.Turn) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.deleted {
		return false
	}
	var floor time.Time
	if n := len(u.turns); n > 0 {
		floor = u.turns[n-1].CreatedAt
	}
	for _, t := range turns {
		t.UserID = userID
		t.CreatedAt = notBefore(t.CreatedAt, floor)
		floor = t.CreatedAt
		u.turns = append(u.turns, t)
	}
	return true
}

// DeleteUser marca el registro bajo su propio lock para que un append en curso no lo reutilice.
func (r *MemoryUserRepository) DeleteUser(_ context.Context, userID string) error {
	u := r.user(userID, false)
	if u == nil {
		return nil
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	r.mu.Lock()
	if r.users[userID] == u {
		delete(r.users, userID)
	}
	r.mu.Unlock()
	u.deleted = true
	return nil
}

var (
	_ UserRepository = (*MemoryUserRepository)(nil)
	_ UserRepository = (*PgUserRepository)(nil)
	_ FileRepository = (*PgFileRepository)(nil)
)

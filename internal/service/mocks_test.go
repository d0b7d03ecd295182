package service

import (
	"context"
	"sync"

	"science-chat/internal/domain"
	"science-chat/internal/repository"
)

// mockUserRepo envuelve el repositorio en memoria para inyectar fallas y contar llamadas.
type mockUserRepo struct {
	*repository.MemoryUserRepository

	mu        sync.Mutex
	findErr   error
	appendErr error
	deleteErr error
	appends   int
	deletes   []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{MemoryUserRepository: repository.NewMemoryUserRepository()}
}

func (m *mockUserRepo) FindUser(ctx context.Context, userID string) ([]domain.Turn, bool, error) {
	if m.findErr != nil {
		return nil, false, m.findErr
	}
	return m.MemoryUserRepository.FindUser(ctx, userID)
}

func (m *mockUserRepo) AppendTurns(ctx context.Context, userID string, turns []domain.Turn) error {
	m.mu.Lock()
	m.appends++
	m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	return m.MemoryUserRepository.AppendTurns(ctx, userID, turns)
}

func (m *mockUserRepo) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, userID)
	m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	return m.MemoryUserRepository.DeleteUser(ctx, userID)
}

func (m *mockUserRepo) seed(userID string, pairs ...string) {
	var turns []domain.Turn
	for i, msg := range pairs {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleModel
		}
		turns = append(turns, domain.Turn{Role: role, Message: msg})
	}
	_ = m.MemoryUserRepository.AppendTurns(context.Background(), userID, turns)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"science-chat/internal/domain"
	"science-chat/internal/llm"
	"science-chat/internal/repository"
)

// ChatService orquesta comandos, historial, modelo y persistencia de cada prompt.
// No guarda estado entre llamadas: todo se reconstruye desde el repositorio.
type ChatService struct {
	logger    *zap.Logger
	users     repository.UserRepository
	commands  *CommandRouter
	assembler *HistoryAssembler
	llmClient llm.ChatClient
	limiter   PromptLimiter
	now       func() time.Time
}

func NewChatService(
	logger *zap.Logger,
	users repository.UserRepository,
	llmClient llm.ChatClient,
	limiter PromptLimiter,
	preamble Preamble,
) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		logger:    logger,
		users:     users,
		commands:  NewCommandRouter(users),
		assembler: NewHistoryAssembler(users, preamble),
		llmClient: llmClient,
		limiter:   limiter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandlePrompt responde un prompt del usuario. Los comandos no llaman al modelo
// ni se persisten; una respuesta del modelo se guarda junto con su prompt.
func (s *ChatService) HandlePrompt(ctx context.Context, prompt, userID string) (string, error) {
	if s == nil || s.users == nil || s.llmClient == nil {
		return "", ErrChatServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if strings.TrimSpace(prompt) == "" || userID == "" {
		return "", ErrInvalidRequest
	}
	if s.limiter != nil && !s.limiter.Allow(userID) {
		return "", ErrRateLimited
	}

	if reply, handled, err := s.commands.Route(ctx, prompt, userID); handled {
		if err != nil {
			return "", err
		}
		s.logger.Info("command handled", zap.String("user_id", userID))
		return reply, nil
	}

	history, err := s.assembler.Build(ctx, userID)
	if err != nil {
		return "", err
	}

	promptAt := s.now()
	reply, err := s.llmClient.Chat(ctx, history, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrModelInvocation, err)
	}

	turns := []domain.Turn{
		{ID: uuid.NewString(), UserID: userID, Role: domain.RoleUser, Message: prompt, CreatedAt: promptAt},
		{ID: uuid.NewString(), UserID: userID, Role: domain.RoleModel, Message: reply, CreatedAt: s.now()},
	}
	if err := s.users.AppendTurns(ctx, userID, turns); err != nil {
		// La respuesta es real; el usuario la recibe aunque el historial no se haya guardado.
		s.logger.Error("persist exchange failed", zap.Error(err), zap.String("user_id", userID))
	}

	return reply, nil
}

// History devuelve los turnos persistidos; un usuario desconocido da lista vacia.
func (s *ChatService) History(ctx context.Context, userID string) ([]domain.Turn, error) {
	if s == nil || s.users == nil {
		return nil, ErrChatServiceNotConfigured
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return []domain.Turn{}, nil
	}
	turns, found, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", ErrStorage, err)
	}
	if !found || turns == nil {
		return []domain.Turn{}, nil
	}
	return turns, nil
}

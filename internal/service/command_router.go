package service

import (
	"context"
	"fmt"
	"strings"

	"science-chat/internal/repository"
)

const (
	commandDeleteData = "/delete data"
	commandMyID       = "/my id"
)

// CommandRouter resuelve comandos reservados sin invocar al modelo.
// Solo reconoce el prompt completo normalizado; un comando dentro de una
// frase mas larga no es un comando.
type CommandRouter struct {
	users repository.UserRepository
}

func NewCommandRouter(users repository.UserRepository) *CommandRouter {
	return &CommandRouter{users: users}
}

// Route devuelve la respuesta del comando y true si el prompt lo era.
// El id se compara en minusculas porque el prompt se normaliza igual.
func (r *CommandRouter) Route(ctx context.Context, prompt, userID string) (string, bool, error) {
	normalized := normalizeCommand(prompt)

	switch normalized {
	case commandMyID:
		return fmt.Sprintf("Your User id is: %s", userID), true, nil
	case commandDeleteData:
		return "Please provide the user ID. You can use /my id to get your id.", true, nil
	case commandDeleteData + " " + strings.ToLower(userID):
		if err := r.users.DeleteUser(ctx, userID); err != nil {
			return "", true, fmt.Errorf("%w: delete user: %w", ErrStorage, err)
		}
		return fmt.Sprintf("All data with user ID: %s has been deleted!", userID), true, nil
	}
	return "", false, nil
}

func normalizeCommand(prompt string) string {
	return strings.TrimSpace(strings.ToLower(prompt))
}

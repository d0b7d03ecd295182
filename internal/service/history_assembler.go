package service

import (
	"context"
	"fmt"
	"strings"

	"science-chat/internal/domain"
	"science-chat/internal/llm"
	"science-chat/internal/repository"
)

// Preamble son las instrucciones fijas que acompañan cada invocacion del modelo.
// Nunca se persisten.
type Preamble struct {
	Instruction string
	Greeting    string
}

// DefaultPreamble restringe el asistente a divulgacion cientifica universitaria.
func DefaultPreamble() Preamble {
	return Preamble{
		Instruction: strings.Join([]string{
			"You are an educational chatbot for science (college students).",
			"You provide resources about every piece of information you give.",
			"You are only allowed to provide information related to science.",
			"If you get asked about anything but science don't answer and say you are not allowed to.",
			"Try to respond with short answers if possible.",
			"You are not allowed to say bad words or anything not related to science.",
			"If you get asked hi answer with short answers.",
		}, "\n"),
		Greeting: "Hello I am your assistant with science. How can I help you?",
	}
}

// HistoryAssembler reconstruye la vista de sesion que recibe el modelo.
type HistoryAssembler struct {
	users    repository.UserRepository
	preamble Preamble
}

func NewHistoryAssembler(users repository.UserRepository, preamble Preamble) *HistoryAssembler {
	return &HistoryAssembler{users: users, preamble: preamble}
}

// Build devuelve [historial..., preambulo, saludo] para userID.
func (a *HistoryAssembler) Build(ctx context.Context, userID string) ([]llm.Message, error) {
	turns, _, err := a.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: find user: %w", ErrStorage, err)
	}

	view := make([]llm.Message, 0, len(turns)+2)
	for _, t := range turns {
		view = append(view, llm.Message{Role: modelRole(t.Role), Content: t.Message})
	}
	// El preambulo va como turno de usuario: la API de Gemini no acepta rol system en el historial.
	view = append(view,
		llm.Message{Role: llm.RoleUser, Content: a.preamble.Instruction},
		llm.Message{Role: llm.RoleModel, Content: a.preamble.Greeting},
	)
	return view, nil
}

func modelRole(role domain.Role) string {
	if role == domain.RoleModel {
		return llm.RoleModel
	}
	return llm.RoleUser
}

package domain

import "time"

// Role identifica al autor de un turno de conversacion.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid indica si el rol es uno de los persistibles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Turn es un mensaje inmutable dentro del historial de un usuario.
type Turn struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"timestamp"`
}

package domain

import "time"

// UploadedFile guarda el texto extraido de un documento subido por el usuario.
type UploadedFile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FileType    string    `json:"file_type"`
	FileContent string    `json:"file_content"`
	CreatedAt   time.Time `json:"created_at"`
}

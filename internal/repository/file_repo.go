package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"science-chat/internal/domain"
)

type FileRepository interface {
	// CreateIfAbsent guarda el archivo solo si el usuario no tiene uno previo.
	CreateIfAbsent(ctx context.Context, file domain.UploadedFile) (bool, error)
}

type PgFileRepository struct {
	pool *pgxpool.Pool
}

func NewPgFileRepository(pool *pgxpool.Pool) *PgFileRepository {
	return &PgFileRepository{pool: pool}
}

func (r *PgFileRepository) CreateIfAbsent(ctx context.Context, file domain.UploadedFile) (bool, error) {
	const query = `
		INSERT INTO uploaded_files (id, user_id, file_type, file_content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := r.pool.Exec(ctx, query,
		file.ID,
		file.UserID,
		file.FileType,
		file.FileContent,
		file.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

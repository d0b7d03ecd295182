package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"science-chat/internal/domain"
)

// UserRepository define el contrato de persistencia del historial por usuario.
// AppendTurns debe comportarse como serializado por userID.
type UserRepository interface {
	FindUser(ctx context.Context, userID string) ([]domain.Turn, bool, error)
	AppendTurns(ctx context.Context, userID string, turns []domain.Turn) error
	DeleteUser(ctx context.Context, userID string) error
}

// PgUserRepository implementa UserRepository usando pgxpool.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

func (r *PgUserRepository) FindUser(ctx context.Context, userID string) ([]domain.Turn, bool, error) {
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM chat_users WHERE user_id = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, userID).Scan(&exists); err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}

	const query = `
		SELECT id, user_id, role, message, created_at
		FROM chat_turns
		WHERE user_id = $1
		ORDER BY seq ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var turn domain.Turn
		var role string
		if err := rows.Scan(&turn.ID, &turn.UserID, &role, &turn.Message, &turn.CreatedAt); err != nil {
			return nil, false, err
		}
		turn.Role = domain.Role(role)
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return turns, true, nil
}

// AppendTurns crea el usuario si no existe y agrega los turnos en una sola
// transaccion. El FOR UPDATE sobre la fila del usuario serializa appends
// concurrentes del mismo usuario sin bloquear a otros.
func (r *PgUserRepository) AppendTurns(ctx context.Context, userID string, turns []domain.Turn) (err error) {
	if len(turns) == 0 {
		return nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	const upsertUser = `
		INSERT INTO chat_users (user_id, created_at)
		VALUES ($1, now())
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err = tx.Exec(ctx, upsertUser, userID); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	const lockUser = `SELECT user_id FROM chat_users WHERE user_id = $1 FOR UPDATE`
	var locked string
	if err = tx.QueryRow(ctx, lockUser, userID).Scan(&locked); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}

	const lastSeq = `
		SELECT COALESCE(MAX(seq), 0), MAX(created_at)
		FROM chat_turns
		WHERE user_id = $1
	`
	var seq int64
	var lastAt *time.Time
	if err = tx.QueryRow(ctx, lastSeq, userID).Scan(&seq, &lastAt); err != nil {
		return fmt.Errorf("last seq: %w", err)
	}
	var floor time.Time
	if lastAt != nil {
		floor = *lastAt
	}

	const insertTurn = `
		INSERT INTO chat_turns (id, user_id, seq, role, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	batch := &pgx.Batch{}
	for _, turn := range turns {
		seq++
		floor = notBefore(turn.CreatedAt, floor)
		batch.Queue(insertTurn, turn.ID, userID, seq, string(turn.Role), turn.Message, floor)
	}
	if err = tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert turns: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteUser borra el usuario y, en cascada, sus turnos. No falla si no existe.
func (r *PgUserRepository) DeleteUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM chat_users WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

// notBefore mantiene los timestamps de un usuario no decrecientes.
func notBefore(at, floor time.Time) time.Time {
	if at.Before(floor) {
		return floor
	}
	return at
}

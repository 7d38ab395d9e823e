package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const insertRefreshToken = `INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at) VALUES ($1,$2,$3,$4)`

func (s *Postgres) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx, insertRefreshToken, id, userID, tokenHash, expiresAt)
	return id, pgErr(err)
}

func (s *Postgres) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	rows, _ := s.pool.Query(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at
		 FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	rt, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByPos[RefreshToken])
	if err != nil {
		return nil, pgErr(err)
	}
	return rt, nil
}

// RotateRefreshToken marks oldID replaced by newID and stores newID in one
// transaction.
func (s *Postgres) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE refresh_tokens SET revoked = true, replaced_by = $1 WHERE id = $2 AND revoked = false`,
			newID, oldID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, insertRefreshToken, newID, userID, newHash, newExpiry)
		return err
	})
	return pgErr(err)
}

func (s *Postgres) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`, userID)
	return pgErr(err)
}

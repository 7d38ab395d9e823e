package store

import (
	"context"

	"clinic-admin/internal/model"
)

func (s *Postgres) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1,$2,$3)`,
		u.ID, u.Email, u.PasswordHash,
	)
	return pgErr(err)
}

func (s *Postgres) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, `email`, email)
}

func (s *Postgres) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userWhere(ctx, `id`, id)
}

func (s *Postgres) userWhere(ctx context.Context, col, v string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, created_at, updated_at
		 FROM users WHERE `+col+` = $1`, v,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, pgErr(err)
	}
	return u, nil
}

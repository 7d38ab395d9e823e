package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"clinic-admin/internal/model"
)

// SQLite is the embedded store used for local runs and tests. Timestamps are
// kept as RFC 3339 text.
type SQLite struct {
	db *sqlx.DB
}

// OpenSQLite opens (creating if needed) the database file at path and applies
// the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; avoids SQLITE_BUSY between pooled connections
	db.SetMaxOpenConns(1)

	s := NewSQLite(db)
	if err := s.applySchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already open handle without touching the schema.
func NewSQLite(db *sqlx.DB) *SQLite {
	return &SQLite{db: db}
}

func (s *SQLite) applySchema(ctx context.Context) error {
	b, err := migrationsFS.ReadFile("migrations/sqlite/schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(b), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLite) Close() { s.db.Close() }

func sqliteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	case strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrDuplicate
	}
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// ----- appointments -----

type appointmentRow struct {
	ID          string `db:"id"`
	OwnerID     string `db:"owner_id"`
	Date        string `db:"date"`
	Time        string `db:"time"`
	PatientName string `db:"patient_name"`
	Status      string `db:"status"`
	CreatedAt   string `db:"created_at"`
	UpdatedAt   string `db:"updated_at"`
}

func (r appointmentRow) model() model.Appointment {
	return model.Appointment{
		ID:          r.ID,
		OwnerID:     r.OwnerID,
		Date:        r.Date,
		Time:        r.Time,
		PatientName: r.PatientName,
		Status:      model.Status(r.Status),
		CreatedAt:   parseTime(r.CreatedAt),
		UpdatedAt:   parseTime(r.UpdatedAt),
	}
}

func (s *SQLite) InsertAppointment(ctx context.Context, a *model.Appointment) (string, error) {
	id := uuid.New().String()
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, owner_id, date, time, patient_name, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		id, a.OwnerID, a.Date, a.Time, a.PatientName, string(a.Status), ts, ts,
	)
	if err != nil {
		return "", sqliteErr(err)
	}
	return id, nil
}

func (s *SQLite) UpdateAppointment(ctx context.Context, id string, d model.Draft) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE appointments SET date=?, time=?, patient_name=?, status=?, updated_at=? WHERE id=?`,
		d.Date, d.Time, d.PatientName, string(d.Status), now(), id,
	)
	return affected(res, err)
}

func (s *SQLite) DeleteAppointment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM appointments WHERE id=?`, id)
	return affected(res, err)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return sqliteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) GetAppointment(ctx context.Context, id string) (*model.Appointment, error) {
	var r appointmentRow
	if err := s.db.GetContext(ctx, &r, `SELECT `+appointmentCols+` FROM appointments WHERE id=?`, id); err != nil {
		return nil, sqliteErr(err)
	}
	a := r.model()
	return &a, nil
}

func (s *SQLite) AppointmentsWhere(ctx context.Context, field Field, value string) ([]model.Appointment, error) {
	col, err := field.column()
	if err != nil {
		return nil, err
	}
	var rows []appointmentRow
	err = s.db.SelectContext(ctx, &rows,
		`SELECT `+appointmentCols+` FROM appointments WHERE `+col+` = ? ORDER BY date, time`, value)
	if err != nil {
		return nil, sqliteErr(err)
	}
	out := make([]model.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.model())
	}
	return out, nil
}

// ----- users -----

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
	UpdatedAt    string `db:"updated_at"`
}

func (s *SQLite) CreateUser(ctx context.Context, u *model.User) error {
	ts := now()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at, updated_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Email, u.PasswordHash, ts, ts,
	)
	return sqliteErr(err)
}

func (s *SQLite) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userWhere(ctx, "email", email)
}

func (s *SQLite) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userWhere(ctx, "id", id)
}

func (s *SQLite) userWhere(ctx context.Context, col, v string) (*model.User, error) {
	var r userRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, email, password_hash, created_at, updated_at FROM users WHERE `+col+` = ?`, v)
	if err != nil {
		return nil, sqliteErr(err)
	}
	return &model.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    parseTime(r.CreatedAt),
		UpdatedAt:    parseTime(r.UpdatedAt),
	}, nil
}

// ----- refresh tokens -----

type refreshTokenRow struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	TokenHash  string         `db:"token_hash"`
	ExpiresAt  string         `db:"expires_at"`
	Revoked    bool           `db:"revoked"`
	ReplacedBy sql.NullString `db:"replaced_by"`
	CreatedAt  string         `db:"created_at"`
}

func (s *SQLite) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)`,
		id, userID, tokenHash, expiresAt.UTC().Format(time.RFC3339Nano), now(),
	)
	return id, sqliteErr(err)
}

func (s *SQLite) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	var r refreshTokenRow
	err := s.db.GetContext(ctx, &r,
		`SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, sqliteErr(err)
	}
	rt := &RefreshToken{
		ID:        r.ID,
		UserID:    r.UserID,
		TokenHash: r.TokenHash,
		ExpiresAt: parseTime(r.ExpiresAt),
		Revoked:   r.Revoked,
		CreatedAt: parseTime(r.CreatedAt),
	}
	if r.ReplacedBy.Valid {
		rt.ReplacedBy = &r.ReplacedBy.String
	}
	return rt, nil
}

func (s *SQLite) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := affected(tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, replaced_by = ? WHERE id = ? AND revoked = 0`, newID, oldID)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at) VALUES (?,?,?,?,?)`,
		newID, userID, newHash, newExpiry.UTC().Format(time.RFC3339Nano), now()); err != nil {
		return sqliteErr(err)
	}
	return tx.Commit()
}

func (s *SQLite) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`, userID)
	return err
}

// Package store holds the record store backends. The appointments collection
// is addressed like a document collection: insert returns a generated id,
// update and delete report ErrNotFound, and reads are equality queries.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic-admin/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Field names a queryable appointment field.
type Field string

const (
	FieldOwnerID Field = "owner_id"
	FieldStatus  Field = "status"
	FieldDate    Field = "date"
)

func (f Field) column() (string, error) {
	switch f {
	case FieldOwnerID, FieldStatus, FieldDate:
		return string(f), nil
	}
	return "", fmt.Errorf("field %q is not queryable", string(f))
}

type Appointments interface {
	// InsertAppointment stores a and returns the generated id. a.ID is ignored.
	InsertAppointment(ctx context.Context, a *model.Appointment) (string, error)
	UpdateAppointment(ctx context.Context, id string, d model.Draft) error
	DeleteAppointment(ctx context.Context, id string) error
	GetAppointment(ctx context.Context, id string) (*model.Appointment, error)
	AppointmentsWhere(ctx context.Context, field Field, value string) ([]model.Appointment, error)
}

type Users interface {
	CreateUser(ctx context.Context, u *model.User) error
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UserByID(ctx context.Context, id string) (*model.User, error)
}

type RefreshToken struct {
	ID         string
	UserID     string
	TokenHash  string
	ExpiresAt  time.Time
	Revoked    bool
	ReplacedBy *string
	CreatedAt  time.Time
}

type RefreshTokens interface {
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error
}

// Store is everything a backend provides.
type Store interface {
	Appointments
	Users
	RefreshTokens
	Ping(ctx context.Context) error
	Close()
}

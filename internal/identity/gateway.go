// Package identity is the sign-in/sign-up gateway. It owns credentials,
// access tokens and refresh-token rotation; callers only ever see an Identity.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"clinic-admin/internal/auth"
	"clinic-admin/internal/model"
	"clinic-admin/internal/store"
)

const MinPasswordLen = 6

var (
	ErrAuth               = errors.New("authentication failed")
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrAuth)
	ErrEmailTaken         = fmt.Errorf("%w: email already in use", ErrAuth)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", ErrAuth, MinPasswordLen)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email", ErrAuth)
	ErrGatewayUnavailable = fmt.Errorf("%w: identity service unavailable", ErrAuth)
)

// Identity is a signed-in user plus the tokens that prove it.
type Identity struct {
	UserID       string
	Email        string
	AccessToken  string
	RefreshToken string
}

type Store interface {
	store.Users
	store.RefreshTokens
}

type Gateway struct {
	store  Store
	secret string
	log    logrus.FieldLogger
}

func NewGateway(st Store, secret string, log logrus.FieldLogger) *Gateway {
	return &Gateway{store: st, secret: secret, log: log.WithField("component", "identity")}
}

func (g *Gateway) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &model.User{ID: uuid.New().String(), Email: email, PasswordHash: hash}
	if err := g.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, g.unavailable("sign up", err)
	}
	g.log.WithField("uid", u.ID).Info("user registered")
	return g.issue(ctx, u.ID, u.Email)
}

func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email, err := normalizeEmail(email)
	if err != nil || password == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := g.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, g.unavailable("sign in", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return g.issue(ctx, u.ID, u.Email)
}

// SignOut revokes every refresh token the user holds.
func (g *Gateway) SignOut(ctx context.Context, userID string) error {
	if err := g.store.RevokeAllRefreshTokens(ctx, userID); err != nil {
		return g.unavailable("sign out", err)
	}
	return nil
}

// Verify checks an access token without touching the store.
func (g *Gateway) Verify(token string) (*Identity, error) {
	c, err := auth.ParseToken(token, g.secret)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{UserID: c.UserID, Email: c.Email, AccessToken: token}, nil
}

// Refresh trades a refresh token for a new identity, rotating the token.
// Presenting an already rotated token revokes the whole family.
func (g *Gateway) Refresh(ctx context.Context, raw string) (*Identity, error) {
	if raw == "" {
		return nil, ErrInvalidCredentials
	}
	rt, err := g.store.GetRefreshTokenByHash(ctx, auth.HashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, g.unavailable("refresh", err)
	}
	if rt.Revoked {
		g.log.WithField("uid", rt.UserID).Warn("revoked refresh token reused, revoking all")
		if err := g.store.RevokeAllRefreshTokens(ctx, rt.UserID); err != nil {
			return nil, g.unavailable("refresh", err)
		}
		return nil, ErrInvalidCredentials
	}
	if time.Now().After(rt.ExpiresAt) {
		return nil, ErrInvalidCredentials
	}

	u, err := g.store.UserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, g.unavailable("refresh", err)
	}

	newRaw, newHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	err = g.store.RotateRefreshToken(ctx, rt.ID, uuid.New().String(), u.ID, newHash, time.Now().Add(auth.RefreshTTL))
	if errors.Is(err, store.ErrNotFound) {
		// a concurrent refresh rotated it first
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, g.unavailable("refresh", err)
	}
	access, err := auth.MakeToken(u.ID, u.Email, g.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Identity{UserID: u.ID, Email: u.Email, AccessToken: access, RefreshToken: newRaw}, nil
}

func (g *Gateway) issue(ctx context.Context, uid, email string) (*Identity, error) {
	access, err := auth.MakeToken(uid, email, g.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	raw, hash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if _, err := g.store.CreateRefreshToken(ctx, uid, hash, time.Now().Add(auth.RefreshTTL)); err != nil {
		return nil, g.unavailable("issue", err)
	}
	return &Identity{UserID: uid, Email: email, AccessToken: access, RefreshToken: raw}, nil
}

func (g *Gateway) unavailable(op string, err error) error {
	g.log.WithError(err).WithField("op", op).Error("identity store call failed")
	return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Package session carries the signed-in identity of one browser request.
package session

import (
	"context"
	"sync"

	"clinic-admin/internal/identity"
)

// Revoker ends a user's session upstream.
type Revoker interface {
	SignOut(ctx context.Context, userID string) error
}

// Context is the current identity, or none, plus the hooks consumers use to
// react when it changes.
type Context struct {
	mu      sync.Mutex
	sid     string
	ident   *identity.Identity
	revoker Revoker
	subs    map[int]func(*identity.Identity)
	nextSub int
}

func New(sid string, ident *identity.Identity, revoker Revoker) *Context {
	return &Context{sid: sid, ident: ident, revoker: revoker, subs: map[int]func(*identity.Identity){}}
}

// SID keys per-browser state such as the appointment list view.
func (c *Context) SID() string { return c.sid }

// Identity returns nil when signed out.
func (c *Context) Identity() *identity.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ident
}

// OwnerID is the signed-in user's id, or "".
func (c *Context) OwnerID() string {
	if id := c.Identity(); id != nil {
		return id.UserID
	}
	return ""
}

// Set replaces the identity and notifies subscribers.
func (c *Context) Set(ident *identity.Identity) {
	c.mu.Lock()
	c.ident = ident
	subs := c.snapshot()
	c.mu.Unlock()

	for _, fn := range subs {
		fn(ident)
	}
}

// Logout revokes the session. When the revoker fails the identity is kept
// and the error returned.
func (c *Context) Logout(ctx context.Context) error {
	cur := c.Identity()
	if cur == nil {
		return nil
	}
	if c.revoker != nil {
		if err := c.revoker.SignOut(ctx, cur.UserID); err != nil {
			return err
		}
	}
	c.Set(nil)
	return nil
}

// Subscribe registers fn for identity changes made after the call. The
// returned func removes it.
func (c *Context) Subscribe(fn func(*identity.Identity)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Context) snapshot() []func(*identity.Identity) {
	out := make([]func(*identity.Identity), 0, len(c.subs))
	for _, fn := range c.subs {
		out = append(out, fn)
	}
	return out
}

type ctxKey struct{}

func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext returns the request's session, or a signed-out one.
func FromContext(ctx context.Context) *Context {
	if sc, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return sc
	}
	return New("", nil, nil)
}

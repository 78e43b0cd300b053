// Package session carries the caller's authenticated session through a
// context so repositories can resolve "the current user" per request.
package session

import (
	"context"
	"sync"
	"time"
)

// Session is the state established by a successful sign-in or sign-up.
type Session struct {
	ID               string
	UserID           string
	AccessToken      string
	RefreshToken     string
	ExpiresAt        time.Time
	RefreshExpiresAt time.Time
}

// Holder is a mutable slot for one client's session.
type Holder struct {
	mu sync.Mutex
	s  *Session
}

func NewHolder(s *Session) *Holder { return &Holder{s: s} }

func (h *Holder) Get() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.s == nil {
		return nil
	}
	c := *h.s
	return &c
}

func (h *Holder) Set(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s == nil {
		h.s = nil
		return
	}
	c := *s
	h.s = &c
}

func (h *Holder) Clear() { h.Set(nil) }

type holderKey struct{}

// NewContext returns a copy of ctx carrying h.
func NewContext(ctx context.Context, h *Holder) context.Context {
	return context.WithValue(ctx, holderKey{}, h)
}

// FromContext returns the holder stored in ctx, or nil.
func FromContext(ctx context.Context) *Holder {
	h, _ := ctx.Value(holderKey{}).(*Holder)
	return h
}

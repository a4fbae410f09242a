// Package tenancy carries the authenticated identity every store and service
// operation is scoped to. Values are supplied by the authentication
// collaborator and trusted as given.
package tenancy

import (
	"strings"
	"sync"

	"github.com/dmitrijs2005/clipkeeper/internal/common"
)

// Context identifies the user and tenant an operation runs for.
type Context struct {
	UserID   string
	TenantID string
	Email    string
}

// New returns a Context with surrounding space trimmed.
func New(userID, tenantID, email string) Context {
	return Context{
		UserID:   strings.TrimSpace(userID),
		TenantID: strings.TrimSpace(tenantID),
		Email:    strings.TrimSpace(email),
	}
}

// Validate reports ErrNoTenant unless both tenant and user are set.
func (c Context) Validate() error {
	if c.TenantID == "" || c.UserID == "" {
		return common.ErrNoTenant
	}
	return nil
}

// Holder keeps the current session for long-running processes. Readers get a
// copy so a concurrent Set or Clear never produces a torn value.
type Holder struct {
	mu  sync.RWMutex
	cur *Context
}

// Set replaces the current session.
func (h *Holder) Set(c Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = &c
}

// Clear drops the current session.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cur = nil
}

// Current returns a copy of the session and whether one is set.
func (h *Holder) Current() (Context, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.cur == nil {
		return Context{}, false
	}
	return *h.cur, true
}

// Require returns the session or ErrNoTenant.
func (h *Holder) Require() (Context, error) {
	c, ok := h.Current()
	if !ok {
		return Context{}, common.ErrNoTenant
	}
	return c, c.Validate()
}

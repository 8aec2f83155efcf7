// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
)

// Role is the kind of company the caller acts for.
type Role string

const (
	RoleSellerBuyer Role = "seller_buyer"
	RoleBank        Role = "bank"
	RoleSuperAdmin  Role = "super_admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSellerBuyer, RoleBank, RoleSuperAdmin:
		return true
	}
	return false
}

// Session identifies the authenticated user and the company they act for.
type Session struct {
	UserID    string
	CompanyID id.ID
	Role      Role
	SessionID string
}

// IsAdmin reports whether the session has super-admin privileges.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleSuperAdmin
}

type sessionKey struct{}

// WithSession adds Session to context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSession returns Session from context or nil.
func GetSession(ctx context.Context) *Session {
	if v, ok := ctx.Value(sessionKey{}).(*Session); ok {
		return v
	}
	return nil
}

// RequireSession returns the Session or an Unauthorized error.
func RequireSession(ctx context.Context) (*Session, error) {
	s := GetSession(ctx)
	if s == nil || (id.IsNil(s.CompanyID) && s.Role != RoleSuperAdmin) {
		return nil, apperror.NewUnauthorized("session required")
	}
	return s, nil
}

// CurrentCompanyID returns the acting company or a nil ID.
func CurrentCompanyID(ctx context.Context) id.ID {
	if s := GetSession(ctx); s != nil {
		return s.CompanyID
	}
	return id.ID{}
}

// CurrentCompanyRole returns the acting company role or an empty role.
func CurrentCompanyRole(ctx context.Context) Role {
	if s := GetSession(ctx); s != nil {
		return s.Role
	}
	return ""
}

// Package auth turns bearer tokens into request sessions.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret         string
	Issuer         string
	AccessTokenTTL time.Duration
}

// DefaultJWTConfig returns default JWT configuration.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:         secret,
		Issuer:         "supplyfin",
		AccessTokenTTL: 15 * time.Minute,
	}
}

// Claims represents JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID    string `json:"uid"`
	CompanyID string `json:"cid,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"sid,omitempty"`
}

// JWTService handles JWT operations.
type JWTService struct {
	config JWTConfig
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// GenerateAccessToken signs a token for session.
// Tokens are issued by the identity service; this is used by tests and local runs.
func (s *JWTService) GenerateAccessToken(session appctx.Session) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.config.AccessTokenTTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   session.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:    session.UserID,
		Role:      string(session.Role),
		SessionID: session.SessionID,
	}
	if !id.IsNil(session.CompanyID) {
		claims.CompanyID = session.CompanyID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates JWT and returns the session it carries.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(s.config.Issuer))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	role := appctx.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	companyID := id.ID{}
	if claims.CompanyID != "" {
		if companyID, err = id.Parse(claims.CompanyID); err != nil {
			return nil, fmt.Errorf("parse company id: %w", err)
		}
	}
	if id.IsNil(companyID) && role != appctx.RoleSuperAdmin {
		return nil, fmt.Errorf("company id required for role %q", role)
	}

	return &appctx.Session{
		UserID:    claims.UserID,
		CompanyID: companyID,
		Role:      role,
		SessionID: claims.SessionID,
	}, nil
}

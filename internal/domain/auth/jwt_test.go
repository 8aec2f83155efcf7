package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/id"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	session := appctx.Session{UserID: "u-1", CompanyID: id.New(), Role: appctx.RoleBank, SessionID: "s-1"}

	token, expiresAt, err := svc.GenerateAccessToken(session)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, session, *got)
}

func TestJWTService_Rejects(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	company := id.New().String()
	later := time.Now().Add(time.Hour)

	sign := func(secret, issuer string, expires time.Time, role, companyID string) string {
		claims := Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer, ExpiresAt: jwt.NewNumericDate(expires)},
			UserID:           "u-1",
			Role:             role,
			CompanyID:        companyID,
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "wrong secret", token: sign("other", "supplyfin", later, "bank", company)},
		{name: "expired", token: sign("secret", "supplyfin", time.Now().Add(-time.Minute), "bank", company)},
		{name: "foreign issuer", token: sign("secret", "elsewhere", later, "bank", company)},
		{name: "unknown role", token: sign("secret", "supplyfin", later, "auditor", company)},
		{name: "company missing", token: sign("secret", "supplyfin", later, "seller_buyer", "")},
		{name: "bad company id", token: sign("secret", "supplyfin", later, "bank", "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestJWTService_AdminWithoutCompany(t *testing.T) {
	svc := NewJWTService(DefaultJWTConfig("secret"))
	token, _, err := svc.GenerateAccessToken(appctx.Session{UserID: "root", Role: appctx.RoleSuperAdmin})
	require.NoError(t, err)

	got, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin())
	assert.True(t, id.IsNil(got.CompanyID))
}

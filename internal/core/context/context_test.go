package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	"supplyfin/internal/core/id"
)

func TestRequireSession(t *testing.T) {
	company := id.New()
	tests := []struct {
		name    string
		session *Session
		wantErr bool
	}{
		{name: "missing", wantErr: true},
		{name: "company user", session: &Session{UserID: "u", CompanyID: company, Role: RoleSellerBuyer}},
		{name: "company missing", session: &Session{UserID: "u", Role: RoleBank}, wantErr: true},
		{name: "admin without company", session: &Session{UserID: "root", Role: RoleSuperAdmin}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.session != nil {
				ctx = WithSession(ctx, tt.session)
			}
			got, err := RequireSession(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperror.CodeUnauthorized, err.(*apperror.AppError).Code)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.session, got)
		})
	}
}

func TestCurrentCompany(t *testing.T) {
	assert.True(t, id.IsNil(CurrentCompanyID(context.Background())))
	assert.Empty(t, CurrentCompanyRole(context.Background()))

	company := id.New()
	ctx := WithSession(context.Background(), &Session{CompanyID: company, Role: RoleBank})
	assert.Equal(t, company, CurrentCompanyID(ctx))
	assert.Equal(t, RoleBank, CurrentCompanyRole(ctx))
}

func TestNewTrace(t *testing.T) {
	tc := NewTrace("trace-1", "", "req-1")
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Len(t, tc.SpanID, 16)

	generated := NewTrace("", "", "")
	assert.NotEmpty(t, generated.TraceID)
	assert.NotEmpty(t, generated.RequestID)
	assert.NotEqual(t, generated.TraceID, generated.RequestID)

	ctx := WithTrace(context.Background(), tc)
	assert.Same(t, tc, GetTrace(ctx))
	assert.Nil(t, GetTrace(context.Background()))
}

package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/core/id"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator struct {
	session *appctx.Session
}

func (v stubValidator) ValidateToken(token string) (*appctx.Session, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return v.session, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/x", handlers...)
	return r
}

func do(t *testing.T, r http.Handler, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func ok(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) }

func TestAuth(t *testing.T) {
	session := &appctx.Session{UserID: "u-1", CompanyID: id.New(), Role: appctx.RoleSellerBuyer}

	var seen *appctx.Session
	r := newEngine(Auth(stubValidator{session: session}), func(c *gin.Context) {
		seen = appctx.GetSession(c.Request.Context())
		ok(c)
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"scheme is case-insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			h := map[string]string{}
			if tt.header != "" {
				h["Authorization"] = tt.header
			}
			w, body := do(t, r, h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, session, seen)
			} else {
				assert.Nil(t, seen)
				assert.Equal(t, apperror.CodeUnauthorized, body["code"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	bank := &appctx.Session{UserID: "u", CompanyID: id.New(), Role: appctx.RoleBank}
	r := newEngine(Auth(stubValidator{session: bank}), RequireRole(appctx.RoleSuperAdmin), ok)

	w, body := do(t, r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperror.CodeForbidden, body["code"])

	admin := &appctx.Session{UserID: "root", Role: appctx.RoleSuperAdmin}
	r = newEngine(Auth(stubValidator{session: admin}), RequireRole(appctx.RoleSuperAdmin), ok)
	w, _ = do(t, r, map[string]string{"Authorization": "Bearer good"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery(t *testing.T) {
	r := newEngine(func(c *gin.Context) { panic("boom") })

	w, body := do(t, r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperror.NewNotFound("registry", "r-1"), http.StatusNotFound, apperror.CodeNotFound},
		{"forbidden", apperror.NewForbidden("registry-status-is-not-in-process", "no"), http.StatusForbidden, "registry-status-is-not-in-process"},
		{"validation", apperror.NewValidation("supply-number-required", "no"), http.StatusBadRequest, "supply-number-required"},
		{"conflict", apperror.NewConcurrentModification("supply", "s-1"), http.StatusConflict, apperror.CodeConcurrentModification},
		{"plain error", errors.New("db down"), http.StatusInternalServerError, apperror.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(func(c *gin.Context) {
				_ = c.Error(tt.err)
				c.Abort()
			})
			w, body := do(t, r, nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, body["code"])
		})
	}
}

func TestTrace(t *testing.T) {
	var tc *appctx.TraceContext
	r := newEngine(func(c *gin.Context) {
		tc = appctx.GetTrace(c.Request.Context())
		ok(c)
	})

	t.Run("generates ids", func(t *testing.T) {
		w, _ := do(t, r, nil)
		require.NotNil(t, tc)
		assert.NotEmpty(t, tc.RequestID)
		assert.Equal(t, tc.RequestID, w.Header().Get(HeaderRequestID))
		assert.Equal(t, tc.TraceID, w.Header().Get(HeaderTraceID))
	})

	t.Run("keeps request id", func(t *testing.T) {
		w, _ := do(t, r, map[string]string{HeaderRequestID: "req-42"})
		assert.Equal(t, "req-42", tc.RequestID)
		assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))
	})

	t.Run("honours traceparent", func(t *testing.T) {
		_, _ = do(t, r, map[string]string{
			"traceparent": "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01",
		})
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", tc.TraceID)
		assert.Equal(t, "00f067aa0ba902b7", tc.SpanID)
	})
}

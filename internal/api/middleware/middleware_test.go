package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RoyceAzure/lab/storefront/internal/constants"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/logger"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/ratelimit"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/token"
	"github.com/RoyceAzure/lab/storefront/internal/service"
	"github.com/RoyceAzure/lab/storefront/internal/service/guard"
	"github.com/RoyceAzure/lab/storefront/internal/util"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 只實作 Authenticate，其餘方法呼叫到會 panic
type fakeAuthService struct {
	service.IAuthService
	tokens map[string]guard.Identity
}

func (f *fakeAuthService) Authenticate(_ context.Context, accessToken string) (guard.Identity, *token.Payload, error) {
	id, ok := f.tokens[accessToken]
	if !ok {
		return guard.Guest(), nil, apperr.New(apperr.NotAuthenticatedCode, "invalid token")
	}
	return id, &token.Payload{ID: uuid.New(), UserID: id.UserID, Role: string(id.Role)}, nil
}

func identityEcho(got *guard.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = util.GetIdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthPayloadMiddleware(t *testing.T) {
	auth := &fakeAuthService{tokens: map[string]guard.Identity{
		"customer-token": guard.Customer(7),
		"admin-token":    guard.Admin(1),
	}}

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantID     guard.Identity
	}{
		{"no header is guest", "", http.StatusNoContent, guard.Guest()},
		{"customer", "Bearer customer-token", http.StatusNoContent, guard.Customer(7)},
		{"lowercase scheme", "bearer admin-token", http.StatusNoContent, guard.Admin(1)},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, guard.Identity{}},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, guard.Identity{}},
		{"missing token", "Bearer", http.StatusUnauthorized, guard.Identity{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got guard.Identity
			h := AuthPayloadMiddleware(auth)(identityEcho(&got))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantID, got)
		})
	}
}

func TestAuthMiddlewareRejectsGuest(t *testing.T) {
	var got guard.Identity
	h := AuthMiddleware(identityEcho(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(util.WithIdentity(req.Context(), guard.Customer(3), nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, guard.Customer(3), got)
}

func TestRequireCapability(t *testing.T) {
	var got guard.Identity
	h := RequireCapability(guard.Reporting)(identityEcho(&got))

	testCases := []struct {
		id         guard.Identity
		wantStatus int
	}{
		{guard.Guest(), http.StatusUnauthorized},
		{guard.Customer(2), http.StatusForbidden},
		{guard.Admin(1), http.StatusNoContent},
	}
	for _, tc := range testCases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(util.WithIdentity(req.Context(), tc.id, nil))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tc.wantStatus, rec.Code, string(tc.id.Role))
	}
}

func TestRequestIdMiddleware(t *testing.T) {
	var seen string
	h := RequestIdMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = util.GetRequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(constants.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", seen)
}

func TestRecoverMiddleware(t *testing.T) {
	h := RecoverMiddleware(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRateLimitMiddleware(t *testing.T) {
	bucket := ratelimit.NewTokenBucket(&ratelimit.LimiterConfig{Capacity: 2, RatePS: 0})
	h := NewRateLimitMiddleware(bucket)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestStatusRecoderDefaultsToOK(t *testing.T) {
	rec := &StatusRecoder{ResponseWriter: httptest.NewRecorder()}
	_, err := rec.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Status())
}

func TestLoggerMiddlewareWritesRequestLine(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info")
	h := LoggerMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
	req = req.WithContext(util.WithIdentity(req.Context(), guard.Customer(5), nil))
	h.ServeHTTP(httptest.NewRecorder(), req)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, float64(5), line["user_id"])
	assert.Equal(t, "customer", line["role"])
	assert.Equal(t, float64(http.StatusCreated), line["status"])
	assert.Equal(t, "/api/v1/orders", line["url"])
}

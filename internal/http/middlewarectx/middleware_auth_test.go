package middlewarectx_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/course-marketplace/internal/http/middlewarectx"
	"github.com/magabrotheeeer/course-marketplace/internal/lib/jwt"
)

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newTestMaker() *jwt.MakerImpl {
	return jwt.NewMaker("access-secret", "refresh-secret", 15*time.Minute, 24*time.Hour)
}

func TestJWTMiddleware(t *testing.T) {
	maker := newTestMaker()
	token, err := maker.GenerateAccessToken("uid-1", "student1", "student@example.com", "student")
	require.NoError(t, err)

	var handlerCalled bool
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		assert.Equal(t, "uid-1", r.Context().Value(middlewarectx.UserUID))
		assert.Equal(t, "student1", r.Context().Value(middlewarectx.User))
		assert.Equal(t, "student", r.Context().Value(middlewarectx.Role))
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.JWTMiddleware(maker, newNoopLogger())(nextHandler)

	tests := []struct {
		name           string
		authHeader     string
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage token",
			authHeader:     "Bearer not.a.jwt",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + token,
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled = false

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rr := httptest.NewRecorder()

			mw.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
		})
	}
}

func TestRoleMiddleware(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	withIdentity := func(req *http.Request, uid, role string) *http.Request {
		ctx := context.WithValue(req.Context(), middlewarectx.UserUID, uid)
		ctx = context.WithValue(ctx, middlewarectx.Role, role)
		return req.WithContext(ctx)
	}

	tests := []struct {
		name           string
		allowed        []string
		uid            string
		role           string
		urlParamID     string
		body           string
		wantStatusCode int
	}{
		{
			name:           "role is allowed",
			allowed:        []string{"admin"},
			uid:            "uid-1",
			role:           "admin",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "role is not allowed",
			allowed:        []string{"admin"},
			uid:            "uid-1",
			role:           "student",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "self matches url param",
			allowed:        []string{"admin", "self"},
			uid:            "uid-1",
			role:           "student",
			urlParamID:     "uid-1",
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "self does not match url param",
			allowed:        []string{"admin", "self"},
			uid:            "uid-1",
			role:           "student",
			urlParamID:     "uid-2",
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:           "self matches body user_id",
			allowed:        []string{"self"},
			uid:            "uid-1",
			role:           "student",
			body:           `{"user_id":"uid-1","course_id":"c1"}`,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing identity",
			allowed:        []string{"admin"},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mw := middlewarectx.RoleMiddleware(newNoopLogger(), tt.allowed...)(nextHandler)

			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			req := httptest.NewRequest(http.MethodPost, "/", body)
			if tt.uid != "" {
				req = withIdentity(req, tt.uid, tt.role)
			}
			if tt.urlParamID != "" {
				rctx := chi.NewRouteContext()
				rctx.URLParams.Add("id", tt.urlParamID)
				req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			}
			rr := httptest.NewRecorder()

			mw.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)
		})
	}
}

func TestRoleMiddleware_BodyIsRestored(t *testing.T) {
	var got string
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		got = string(body)
		w.WriteHeader(http.StatusOK)
	})

	mw := middlewarectx.RoleMiddleware(newNoopLogger(), "self")(nextHandler)

	payload := `{"user_id":"uid-1"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(payload))
	ctx := context.WithValue(req.Context(), middlewarectx.UserUID, "uid-1")
	ctx = context.WithValue(ctx, middlewarectx.Role, "student")
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, payload, got)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0), 2)
	mw := middlewarectx.RateLimitMiddleware(newNoopLogger(), limiter)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}

	rr := httptest.NewRecorder()
	mw.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

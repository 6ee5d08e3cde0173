package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/utils"
)

type stubSessions map[string]*models.User

func (s stubSessions) Resolve(_ context.Context, token string) (*models.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	return nil, models.ErrUnauthenticated
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			ctx.String(http.StatusOK, "anonymous")
			return
		}
		ctx.String(http.StatusOK, "%s:%d", user.Nickname, CurrentUserID(ctx))
	})
	r.GET("/", handlers...)
	return r
}

func TestAuthRequired(t *testing.T) {
	sessions := stubSessions{"good": {ID: 7, Nickname: "nickA"}}
	r := newEngine(AuthRequired(sessions, "session_id"))

	tests := []struct {
		name   string
		setup  func(*http.Request)
		status int
		body   string
	}{
		{"Cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "session_id", Value: "good"}) }, http.StatusOK, "nickA:7"},
		{"Bearer", func(req *http.Request) { req.Header.Set("Authorization", "Bearer good") }, http.StatusOK, "nickA:7"},
		{"Lowercase Bearer", func(req *http.Request) { req.Header.Set("Authorization", "bearer good") }, http.StatusOK, "nickA:7"},
		{"Missing", func(*http.Request) {}, http.StatusUnauthorized, ""},
		{"Unknown Cookie", func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "session_id", Value: "bad"}) }, http.StatusUnauthorized, ""},
		{"Basic Scheme", func(req *http.Request) { req.Header.Set("Authorization", "Basic good") }, http.StatusUnauthorized, ""},
		{"Bearer Beats Stale Cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "bad"})
			req.Header.Set("Authorization", "Bearer good")
		}, http.StatusOK, "nickA:7"},
		{"Empty Bearer Uses Cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: "session_id", Value: "good"})
			req.Header.Set("Authorization", "Bearer ")
		}, http.StatusOK, "nickA:7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, w.Body.String())
				return
			}
			var resp utils.JSONResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "LOGIN_REQUIRED", resp.Code)
			assert.Nil(t, resp.Data)
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	sessions := stubSessions{"good": {ID: 7, Nickname: "nickA"}}
	r := newEngine(OptionalAuth(sessions, "session_id"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "anonymous", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "good"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "nickA:7", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := newEngine(RateLimit(2))

	codes := make([]int, 3)
	for i := range codes {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "buckets are per client")
}

func TestRateLimitDisabled(t *testing.T) {
	r := newEngine(RateLimit(0))
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

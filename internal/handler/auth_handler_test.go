package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/mail"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/middleware"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/service"
	"github.com/Prasad22V/coursebundler-server/internal/token"
)

func newSessionRouter(t *testing.T) (*gin.Engine, *repository.MemoryUserRepository) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	courses := repository.NewMemoryCourseRepository()
	storage := media.NewMemoryStorage()
	codec := token.NewCodec("test-jwt-secret", time.Hour)

	auth := service.NewAuthService(users, storage, codec, &service.AuthServiceConfig{BcryptCost: bcrypt.MinCost})
	userSvc := service.NewUserService(users, courses, storage, mail.NewMemoryMailer(), &service.UserServiceConfig{BcryptCost: bcrypt.MinCost})
	h := NewAuthHandler(auth, userSvc, 15*24*time.Hour)

	r := gin.New()
	r.POST("/api/v1/login", h.Login)
	r.GET("/api/v1/logout", h.Logout)
	return r, users
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.TokenCookie {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r, users := newSessionRouter(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Name: "Alice", Email: "alice@example.com", PasswordHash: string(hash),
	}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(`{"email":"alice@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Welcome back, Alice")

	cookie := sessionCookie(t, w)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteNoneMode, cookie.SameSite)
	assert.Greater(t, cookie.MaxAge, 0)
}

func TestLogoutExpiresSessionCookie(t *testing.T) {
	r, _ := newSessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged Out Successfully")

	cookie := sessionCookie(t, w)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}

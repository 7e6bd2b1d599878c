package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(t *testing.T, handlers ...gin.HandlerFunc) (*gin.Engine, *repository.MemoryUserRepository, *token.Codec) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	codec := token.NewCodec("test-secret", time.Hour)

	r := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(codec, users)}, handlers...)
	r.GET("/protected", append(chain, func(c *gin.Context) {
		user, _ := GetUser(c)
		c.String(http.StatusOK, user.Email)
	})...)
	return r, users, codec
}

func addUser(t *testing.T, users *repository.MemoryUserRepository, role domain.Role, status domain.SubscriptionStatus) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test User",
		Email:        "user@example.com",
		Role:         role,
		Subscription: domain.Subscription{Status: status},
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func request(r *gin.Engine, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: cookie})
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	t.Run("valid cookie attaches the user", func(t *testing.T) {
		r, users, codec := newAuthRouter(t)
		user := addUser(t, users, domain.RoleUser, "")
		tok, err := codec.Issue(user.ID.Hex())
		require.NoError(t, err)

		w := request(r, tok)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "user@example.com", w.Body.String())
	})

	t.Run("missing cookie", func(t *testing.T) {
		r, _, _ := newAuthRouter(t)
		w := request(r, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		r, _, _ := newAuthRouter(t)
		w := request(r, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token for a deleted user", func(t *testing.T) {
		r, users, codec := newAuthRouter(t)
		user := addUser(t, users, domain.RoleUser, "")
		tok, err := codec.Issue(user.ID.Hex())
		require.NoError(t, err)
		require.NoError(t, users.Delete(context.Background(), user.ID))

		w := request(r, tok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireSubscriber(t *testing.T) {
	cases := []struct {
		name   string
		role   domain.Role
		status domain.SubscriptionStatus
		want   int
	}{
		{"active subscriber", domain.RoleUser, domain.SubscriptionActive, http.StatusOK},
		{"admin without subscription", domain.RoleAdmin, "", http.StatusOK},
		{"user without subscription", domain.RoleUser, "", http.StatusForbidden},
		{"subscription only created", domain.RoleUser, domain.SubscriptionCreated, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, users, codec := newAuthRouter(t, RequireSubscriber())
			user := addUser(t, users, tc.role, tc.status)
			tok, err := codec.Issue(user.ID.Hex())
			require.NoError(t, err)

			w := request(r, tok)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	t.Run("admin passes", func(t *testing.T) {
		r, users, codec := newAuthRouter(t, RequireAdmin())
		user := addUser(t, users, domain.RoleAdmin, "")
		tok, err := codec.Issue(user.ID.Hex())
		require.NoError(t, err)

		w := request(r, tok)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("regular user is forbidden", func(t *testing.T) {
		r, users, codec := newAuthRouter(t, RequireAdmin())
		user := addUser(t, users, domain.RoleUser, "")
		tok, err := codec.Issue(user.ID.Hex())
		require.NoError(t, err)

		w := request(r, tok)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

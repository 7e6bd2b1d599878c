package middleware

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/token"
	"github.com/Prasad22V/coursebundler-server/pkg/response"
)

const (
	// TokenCookie is the session cookie name
	TokenCookie = "token"
	// ContextKeyUser is the gin context key holding the authenticated user
	ContextKeyUser = "user"
)

// Authenticate resolves the session cookie to a user and attaches it to the
// request context. Requests without a valid cookie are rejected with 401.
func Authenticate(codec *token.Codec, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(TokenCookie)
		if err != nil || cookie == "" {
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}

		subject, err := codec.Verify(cookie)
		if err != nil {
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}
		userID, err := bson.ObjectIDFromHex(subject)
		if err != nil {
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			response.AbortWithError(c, domain.Wrap(domain.KindInternal, "Failed to load user", err))
			return
		}
		if user == nil {
			// Token outlived the account
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}

		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireSubscriber lets only active subscribers and admins through.
// Must run after Authenticate.
func RequireSubscriber() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}
		if !user.HasActiveSubscription() && !user.IsAdmin() {
			response.AbortWithError(c, domain.E(domain.KindForbidden, "Only subscribers can access this resource"))
			return
		}
		c.Next()
	}
}

// RequireAdmin lets only admins through. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetUser(c)
		if !ok {
			response.AbortWithError(c, domain.E(domain.KindUnauthenticated, "Not logged in"))
			return
		}
		if !user.IsAdmin() {
			response.AbortWithError(c, domain.E(domain.KindForbidden, "Only admin is allowed to access this resource"))
			return
		}
		c.Next()
	}
}

// GetUser extracts the authenticated user from the gin context
func GetUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

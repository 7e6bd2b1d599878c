package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/token"
)

func newAuthFixture(t *testing.T) (AuthService, *repository.MemoryUserRepository, *media.MemoryStorage, *token.Codec) {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	storage := media.NewMemoryStorage()
	codec := token.NewCodec("test-secret", time.Hour)
	svc := NewAuthService(users, storage, codec, &AuthServiceConfig{BcryptCost: bcrypt.MinCost})
	return svc, users, storage, codec
}

func TestRegister(t *testing.T) {
	t.Run("creates the user with hashed password and avatar", func(t *testing.T) {
		svc, users, storage, codec := newAuthFixture(t)

		user, tok, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", strings.NewReader("png-bytes"))
		require.NoError(t, err)
		assert.NotEmpty(t, tok)

		subject, err := codec.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, user.ID.Hex(), subject)

		stored, err := users.GetByEmail(context.Background(), "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, domain.RoleUser, stored.Role)
		assert.NotEqual(t, "secret123", stored.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")))
		assert.True(t, storage.Has(stored.Avatar.PublicID))
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc, _, _, _ := newAuthFixture(t)

		_, _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", strings.NewReader("a"))
		require.NoError(t, err)

		_, _, err = svc.Register(context.Background(), "Other Alice", "alice@example.com", "different", strings.NewReader("b"))
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})
}

func TestLogin(t *testing.T) {
	svc, _, _, codec := newAuthFixture(t)
	registered, _, err := svc.Register(context.Background(), "Alice", "alice@example.com", "secret123", strings.NewReader("a"))
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, tok, err := svc.Login(context.Background(), "alice@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)

		subject, err := codec.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, registered.ID.Hex(), subject)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice@example.com", "nope")
		assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		// Same message and kind as a wrong password, so callers can't probe
		// which emails exist
		_, _, err := svc.Login(context.Background(), "nobody@example.com", "secret123")
		assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
	})
}

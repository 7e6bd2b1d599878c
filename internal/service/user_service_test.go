package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/mail"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
)

type userFixture struct {
	users   *repository.MemoryUserRepository
	courses *repository.MemoryCourseRepository
	storage *media.MemoryStorage
	mailer  *mail.MemoryMailer
	service UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:   repository.NewMemoryUserRepository(),
		courses: repository.NewMemoryCourseRepository(),
		storage: media.NewMemoryStorage(),
		mailer:  mail.NewMemoryMailer(),
	}
	f.service = NewUserService(f.users, f.courses, f.storage, f.mailer, &UserServiceConfig{
		BcryptCost:  bcrypt.MinCost,
		FrontendURL: "http://localhost:3000",
	})
	return f
}

func (f *userFixture) addUser(t *testing.T, email, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{Name: "Test User", Email: email, PasswordHash: string(hash), Role: domain.RoleUser}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *userFixture) addCourse(t *testing.T) *domain.Course {
	t.Helper()
	course := &domain.Course{
		Title:  "Go in Depth",
		Poster: domain.Avatar{PublicID: "posters/go", URL: "https://media.local/posters/go"},
	}
	require.NoError(t, f.courses.Create(context.Background(), course))
	return course
}

func TestChangePassword(t *testing.T) {
	t.Run("rotates the hash when the old password matches", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "oldpass")

		require.NoError(t, f.service.ChangePassword(context.Background(), user.ID, "oldpass", "newpass"))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass")))
	})

	t.Run("rejects a wrong old password", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "oldpass")

		err := f.service.ChangePassword(context.Background(), user.ID, "nope", "newpass")
		assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
	})
}

func TestPasswordReset(t *testing.T) {
	t.Run("mails a token whose hash unlocks the reset", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "oldpass")

		require.NoError(t, f.service.ForgotPassword(context.Background(), "alice@example.com"))
		require.Len(t, f.mailer.Sent, 1)
		assert.Equal(t, "alice@example.com", f.mailer.Sent[0].To)

		// The raw token only exists inside the mail body
		parts := strings.Split(f.mailer.Sent[0].Body, "/resetpassword/")
		require.Len(t, parts, 2)
		rawToken := strings.SplitN(parts[1], ".", 2)[0]

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, rawToken, stored.ResetPasswordToken)

		require.NoError(t, f.service.ResetPassword(context.Background(), rawToken, "newpass"))

		stored, err = f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newpass")))
		assert.Empty(t, stored.ResetPasswordToken)
		assert.True(t, stored.ResetPasswordExpire.IsZero())
	})

	t.Run("expired token", func(t *testing.T) {
		f := newUserFixture(t)
		f.service = NewUserService(f.users, f.courses, f.storage, f.mailer, &UserServiceConfig{
			BcryptCost:    bcrypt.MinCost,
			ResetTokenTTL: -time.Minute,
		})
		f.addUser(t, "alice@example.com", "oldpass")

		require.NoError(t, f.service.ForgotPassword(context.Background(), "alice@example.com"))
		parts := strings.Split(f.mailer.Sent[0].Body, "/resetpassword/")
		rawToken := strings.SplitN(parts[1], ".", 2)[0]

		err := f.service.ResetPassword(context.Background(), rawToken, "newpass")
		assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
	})

	t.Run("unknown token", func(t *testing.T) {
		f := newUserFixture(t)
		err := f.service.ResetPassword(context.Background(), "bogus", "newpass")
		assert.Equal(t, domain.KindUnauthenticated, domain.KindOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		f := newUserFixture(t)
		err := f.service.ForgotPassword(context.Background(), "nobody@example.com")
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		assert.Empty(t, f.mailer.Sent)
	})
}

func TestPlaylist(t *testing.T) {
	t.Run("add stores a poster reference", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")
		course := f.addCourse(t)

		require.NoError(t, f.service.AddToPlaylist(context.Background(), user.ID, course.ID))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, stored.Playlist, 1)
		assert.Equal(t, course.ID, stored.Playlist[0].CourseID)
		assert.Equal(t, course.Poster.URL, stored.Playlist[0].Poster)
	})

	t.Run("adding twice is a conflict", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")
		course := f.addCourse(t)

		require.NoError(t, f.service.AddToPlaylist(context.Background(), user.ID, course.ID))
		err := f.service.AddToPlaylist(context.Background(), user.ID, course.ID)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("add and remove validate the course id", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")

		err := f.service.AddToPlaylist(context.Background(), user.ID, bson.NewObjectID())
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))

		err = f.service.RemoveFromPlaylist(context.Background(), user.ID, bson.NewObjectID())
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})

	t.Run("remove filters the entry", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")
		course := f.addCourse(t)
		other := f.addCourse(t)

		require.NoError(t, f.service.AddToPlaylist(context.Background(), user.ID, course.ID))
		require.NoError(t, f.service.AddToPlaylist(context.Background(), user.ID, other.ID))
		require.NoError(t, f.service.RemoveFromPlaylist(context.Background(), user.ID, course.ID))

		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		require.Len(t, stored.Playlist, 1)
		assert.Equal(t, other.ID, stored.Playlist[0].CourseID)
	})
}

// Profile writes go through a whole-document replace, so two concurrent
// updates race and the last write wins. This pins down the accepted
// behavior: both final states are legal, torn documents are not.
func TestPlaylistConcurrentUpdateLastWriteWins(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "alice@example.com", "pass")
	a := f.addCourse(t)
	b := f.addCourse(t)

	var wg sync.WaitGroup
	for _, id := range []bson.ObjectID{a.ID, b.ID} {
		wg.Add(1)
		go func(courseID bson.ObjectID) {
			defer wg.Done()
			_ = f.service.AddToPlaylist(context.Background(), user.ID, courseID)
		}(id)
	}
	wg.Wait()

	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Playlist)
	assert.LessOrEqual(t, len(stored.Playlist), 2)
	for _, item := range stored.Playlist {
		assert.Contains(t, []bson.ObjectID{a.ID, b.ID}, item.CourseID)
	}
}

func TestUpdateAvatar(t *testing.T) {
	f := newUserFixture(t)
	user := f.addUser(t, "alice@example.com", "pass")

	require.NoError(t, f.service.UpdateAvatar(context.Background(), user.ID, strings.NewReader("first")))
	stored, err := f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	first := stored.Avatar.PublicID
	require.True(t, f.storage.Has(first))

	require.NoError(t, f.service.UpdateAvatar(context.Background(), user.ID, strings.NewReader("second")))
	stored, err = f.users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, stored.Avatar.PublicID)
	assert.False(t, f.storage.Has(first))
	assert.True(t, f.storage.Has(stored.Avatar.PublicID))
}

func TestAdminUserManagement(t *testing.T) {
	t.Run("toggle role flips between user and admin", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")

		require.NoError(t, f.service.ToggleRole(context.Background(), user.ID))
		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, stored.Role)

		require.NoError(t, f.service.ToggleRole(context.Background(), user.ID))
		stored, err = f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, stored.Role)
	})

	t.Run("delete removes the user and their avatar", func(t *testing.T) {
		f := newUserFixture(t)
		user := f.addUser(t, "alice@example.com", "pass")
		require.NoError(t, f.service.UpdateAvatar(context.Background(), user.ID, strings.NewReader("pic")))
		stored, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)

		require.NoError(t, f.service.DeleteUser(context.Background(), user.ID))

		gone, err := f.users.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
		assert.False(t, f.storage.Has(stored.Avatar.PublicID))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newUserFixture(t)
		err := f.service.DeleteUser(context.Background(), bson.NewObjectID())
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

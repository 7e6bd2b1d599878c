package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/mail"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
)

// UserService defines profile, password-reset, playlist and admin operations
type UserService interface {
	ChangePassword(ctx context.Context, userID bson.ObjectID, oldPassword, newPassword string) error
	UpdateProfile(ctx context.Context, userID bson.ObjectID, name, email string) error
	UpdateAvatar(ctx context.Context, userID bson.ObjectID, avatar io.Reader) error
	DeleteMe(ctx context.Context, userID bson.ObjectID) error

	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, resetToken, newPassword string) error

	AddToPlaylist(ctx context.Context, userID, courseID bson.ObjectID) error
	RemoveFromPlaylist(ctx context.Context, userID, courseID bson.ObjectID) error

	ListUsers(ctx context.Context) ([]*domain.User, error)
	ToggleRole(ctx context.Context, userID bson.ObjectID) error
	DeleteUser(ctx context.Context, userID bson.ObjectID) error
}

// UserServiceConfig holds user-service settings
type UserServiceConfig struct {
	BcryptCost    int
	FrontendURL   string
	ResetTokenTTL time.Duration
}

type userService struct {
	users   repository.UserRepository
	courses repository.CourseRepository
	storage media.Storage
	mailer  mail.Mailer
	config  *UserServiceConfig
}

// NewUserService creates a UserService
func NewUserService(
	users repository.UserRepository,
	courses repository.CourseRepository,
	storage media.Storage,
	mailer mail.Mailer,
	config *UserServiceConfig,
) UserService {
	if config == nil {
		config = &UserServiceConfig{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.ResetTokenTTL == 0 {
		config.ResetTokenTTL = 15 * time.Minute
	}
	return &userService{users: users, courses: courses, storage: storage, mailer: mailer, config: config}
}

func (s *userService) load(ctx context.Context, userID bson.ObjectID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to load user", err)
	}
	if user == nil {
		return nil, domain.E(domain.KindNotFound, "User not found")
	}
	return user, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID bson.ObjectID, oldPassword, newPassword string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return domain.E(domain.KindUnauthenticated, "Incorrect old password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to hash password", err)
	}
	user.PasswordHash = string(hash)
	return s.users.Update(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, userID bson.ObjectID, name, email string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	return s.users.Update(ctx, user)
}

func (s *userService) UpdateAvatar(ctx context.Context, userID bson.ObjectID, avatar io.Reader) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	asset, err := s.storage.Upload(ctx, avatar, media.ResourceImage)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to upload avatar", err)
	}
	if user.Avatar.PublicID != "" {
		if err := s.storage.Destroy(ctx, user.Avatar.PublicID, media.ResourceImage); err != nil {
			return domain.Wrap(domain.KindInternal, "Failed to remove old avatar", err)
		}
	}
	user.Avatar = domain.Avatar{PublicID: asset.PublicID, URL: asset.URL}
	return s.users.Update(ctx, user)
}

func (s *userService) DeleteMe(ctx context.Context, userID bson.ObjectID) error {
	return s.DeleteUser(ctx, userID)
}

func (s *userService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to look up user", err)
	}
	if user == nil {
		return domain.E(domain.KindNotFound, "User not found")
	}

	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to generate reset token", err)
	}
	resetToken := hex.EncodeToString(raw)

	// Only the hash is stored; the raw token travels by mail
	hash := sha256.Sum256([]byte(resetToken))
	user.ResetPasswordToken = hex.EncodeToString(hash[:])
	user.ResetPasswordExpire = time.Now().Add(s.config.ResetTokenTTL)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/resetpassword/%s", s.config.FrontendURL, resetToken)
	body := fmt.Sprintf(
		"You are receiving this email because you requested a password reset for your CourseBundler account. %s. If you did not request this, ignore this email.",
		url,
	)
	if err := s.mailer.Send(user.Email, "CourseBundler Reset Password", body); err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to send reset email", err)
	}
	return nil
}

func (s *userService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	hash := sha256.Sum256([]byte(resetToken))
	user, err := s.users.GetByResetToken(ctx, hex.EncodeToString(hash[:]))
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to look up reset token", err)
	}
	if user == nil {
		return domain.E(domain.KindUnauthenticated, "Token is invalid or expired")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.BcryptCost)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to hash password", err)
	}
	user.PasswordHash = string(pwHash)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = time.Time{}
	return s.users.Update(ctx, user)
}

func (s *userService) AddToPlaylist(ctx context.Context, userID, courseID bson.ObjectID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to load course", err)
	}
	if course == nil {
		return domain.E(domain.KindNotFound, "Invalid course id")
	}
	if user.InPlaylist(courseID) {
		return domain.E(domain.KindConflict, "Item already exists")
	}

	user.Playlist = append(user.Playlist, domain.PlaylistItem{
		CourseID: course.ID,
		Poster:   course.Poster.URL,
	})
	return s.users.Update(ctx, user)
}

func (s *userService) RemoveFromPlaylist(ctx context.Context, userID, courseID bson.ObjectID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return domain.Wrap(domain.KindInternal, "Failed to load course", err)
	}
	if course == nil {
		return domain.E(domain.KindNotFound, "Invalid course id")
	}

	filtered := user.Playlist[:0]
	for _, item := range user.Playlist {
		if item.CourseID != courseID {
			filtered = append(filtered, item)
		}
	}
	user.Playlist = filtered
	return s.users.Update(ctx, user)
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Wrap(domain.KindInternal, "Failed to list users", err)
	}
	return users, nil
}

func (s *userService) ToggleRole(ctx context.Context, userID bson.ObjectID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleUser {
		user.Role = domain.RoleAdmin
	} else {
		user.Role = domain.RoleUser
	}
	return s.users.Update(ctx, user)
}

func (s *userService) DeleteUser(ctx context.Context, userID bson.ObjectID) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar.PublicID != "" {
		if err := s.storage.Destroy(ctx, user.Avatar.PublicID, media.ResourceImage); err != nil {
			return domain.Wrap(domain.KindInternal, "Failed to remove avatar", err)
		}
	}
	return s.users.Delete(ctx, userID)
}

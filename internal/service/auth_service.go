package service

import (
	"context"
	"io"

	"golang.org/x/crypto/bcrypt"

	"github.com/Prasad22V/coursebundler-server/internal/domain"
	"github.com/Prasad22V/coursebundler-server/internal/media"
	"github.com/Prasad22V/coursebundler-server/internal/repository"
	"github.com/Prasad22V/coursebundler-server/internal/token"
)

// AuthService defines registration and login
type AuthService interface {
	// Register creates a user with an uploaded avatar and returns the user
	// plus a fresh session token
	Register(ctx context.Context, name, email, password string, avatar io.Reader) (*domain.User, string, error)
	// Login authenticates by email/password and returns a fresh session token
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

// AuthServiceConfig holds auth settings
type AuthServiceConfig struct {
	BcryptCost int
}

type authService struct {
	users   repository.UserRepository
	storage media.Storage
	codec   *token.Codec
	config  *AuthServiceConfig
}

// NewAuthService creates an AuthService
func NewAuthService(users repository.UserRepository, storage media.Storage, codec *token.Codec, config *AuthServiceConfig) AuthService {
	if config == nil {
		config = &AuthServiceConfig{}
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &authService{users: users, storage: storage, codec: codec, config: config}
}

func (s *authService) Register(ctx context.Context, name, email, password string, avatar io.Reader) (*domain.User, string, error) {
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to look up user", err)
	}
	if existing != nil {
		return nil, "", domain.E(domain.KindConflict, "User already exists")
	}

	asset, err := s.storage.Upload(ctx, avatar, media.ResourceImage)
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to upload avatar", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to hash password", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Avatar:       domain.Avatar{PublicID: asset.PublicID, URL: asset.URL},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	tok, err := s.codec.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to issue token", err)
	}
	return user, tok, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to look up user", err)
	}
	if user == nil {
		return nil, "", domain.E(domain.KindUnauthenticated, "Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.E(domain.KindUnauthenticated, "Incorrect email or password")
	}

	tok, err := s.codec.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", domain.Wrap(domain.KindInternal, "Failed to issue token", err)
	}
	return user, tok, nil
}

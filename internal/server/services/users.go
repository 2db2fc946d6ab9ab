package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/auth"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/repositories/repomanager"
)

// UserService registers accounts and issues access tokens.
type UserService struct {
	repos                       repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
}

func NewUserService(repos repomanager.RepositoryManager, secretKey string, accessTokenValidity time.Duration) *UserService {
	return &UserService{
		repos:                       repos,
		jwtSecret:                   []byte(secretKey),
		accessTokenValidityDuration: accessTokenValidity,
	}
}

// Register creates an account. A taken name or email yields
// common.ErrAlreadyExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}

	user, err = s.repos.Users().Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login checks the credentials and returns a signed access token. Unknown
// email and wrong password both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repos.Users().FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	ok, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}

	return auth.GenerateToken(user.ID, user.Name, s.jwtSecret, s.accessTokenValidityDuration)
}

// List returns every registered user.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.repos.Users().List(ctx)
}

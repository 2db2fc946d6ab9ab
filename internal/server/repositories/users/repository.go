// Package users stores registered accounts. Name and email lookups are
// case-insensitive exact matches.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/server/models"
)

//go:generate go run go.uber.org/mock/mockgen -destination=../../mocks/users_repository.go -package=mocks github.com/dmitrijs2005/gophchat/internal/server/repositories/users Repository

type Repository interface {
	// Create stores user and returns it with ID and CreatedAt set.
	// A taken name or email yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	// List returns every user ordered by name.
	List(ctx context.Context) ([]models.User, error)
}

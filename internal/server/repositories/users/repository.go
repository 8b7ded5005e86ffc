// Package users declares the server-side repository contract for user
// accounts.
package users

import (
	"context"

	"github.com/MMaus/listkeeper/internal/server/models"
)

type Repository interface {
	// Create inserts a new user and fills in its server-assigned id.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns the user with the given username, or
	// common.ErrorNotFound.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

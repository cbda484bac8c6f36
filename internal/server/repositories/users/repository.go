// Package users defines the account storage contract.
package users

import (
	"context"

	"github.com/dmitrijs2005/secretkey/internal/server/models"
)

// Repository stores accounts keyed by their unique login.
//
// Create assigns ID and returns common.ErrorAlreadyExists for a taken
// login; GetUserByLogin returns common.ErrorNotFound for an unknown one.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

// Package platforms defines the credential storage contract.
package platforms

import (
	"context"

	"github.com/dmitrijs2005/secretkey/internal/server/models"
)

// Repository stores platforms per owner. List returns them in no particular
// order; Get and Delete return common.ErrorNotFound for an unknown id.
type Repository interface {
	List(ctx context.Context, ownerID int64) ([]models.Platform, error)
	Get(ctx context.Context, ownerID int64, id string) (*models.Platform, error)
	Put(ctx context.Context, p *models.Platform) error
	Delete(ctx context.Context, ownerID int64, id string) error
}

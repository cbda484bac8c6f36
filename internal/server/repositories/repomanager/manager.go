// Package repomanager groups the repositories of one storage backend.
package repomanager

import (
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/platforms"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Platforms() platforms.Repository
	Close() error
}

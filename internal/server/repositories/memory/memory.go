// Package memory provides thread-safe in-memory repositories.
// Suitable for testing, demos, and single-process use cases.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/platforms"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/users"
)

var (
	_ repomanager.RepositoryManager = (*Manager)(nil)
	_ users.Repository              = (*UserRepository)(nil)
	_ platforms.Repository          = (*PlatformRepository)(nil)
)

type Manager struct {
	users     *UserRepository
	platforms *PlatformRepository
}

func NewManager() *Manager {
	return &Manager{
		users:     &UserRepository{byLogin: make(map[string]*models.User)},
		platforms: &PlatformRepository{data: make(map[int64]map[string]models.Platform)},
	}
}

func (m *Manager) Users() users.Repository         { return m.users }
func (m *Manager) Platforms() platforms.Repository { return m.platforms }
func (m *Manager) Close() error                    { return nil }

type UserRepository struct {
	mu      sync.RWMutex
	byLogin map[string]*models.User
	lastID  int64
}

func cloneUser(u *models.User) *models.User {
	out := *u
	out.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &out
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byLogin[user.UserName]; ok {
		return nil, fmt.Errorf("user %s: %w", user.UserName, common.ErrorAlreadyExists)
	}
	r.lastID++
	stored := cloneUser(user)
	stored.ID = r.lastID
	r.byLogin[user.UserName] = stored
	return cloneUser(stored), nil
}

func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

type PlatformRepository struct {
	mu   sync.RWMutex
	data map[int64]map[string]models.Platform
}

func (r *PlatformRepository) List(ctx context.Context, ownerID int64) ([]models.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Platform, 0, len(r.data[ownerID]))
	for _, p := range r.data[ownerID] {
		out = append(out, p)
	}
	return out, nil
}

func (r *PlatformRepository) Get(ctx context.Context, ownerID int64, id string) (*models.Platform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.data[ownerID][id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r *PlatformRepository) Put(ctx context.Context, p *models.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[p.OwnerID]; !ok {
		r.data[p.OwnerID] = make(map[string]models.Platform)
	}
	r.data[p.OwnerID][p.ID] = *p
	return nil
}

func (r *PlatformRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[ownerID][id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.data[ownerID], id)
	return nil
}

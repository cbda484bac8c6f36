// Package boltdb provides repositories backed by a BBolt database file.
//
// Accounts live in the "users" bucket keyed by login. Platforms live in one
// nested bucket per owner under "platforms", keyed by platform id. Values
// are JSON.
package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/platforms"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/users"
	"go.etcd.io/bbolt"
)

var (
	usersBucket     = []byte("users")
	platformsBucket = []byte("platforms")
)

var (
	_ repomanager.RepositoryManager = (*Manager)(nil)
	_ users.Repository              = (*UserRepository)(nil)
	_ platforms.Repository          = (*PlatformRepository)(nil)
)

type Manager struct {
	db        *bbolt.DB
	users     *UserRepository
	platforms *PlatformRepository
}

// NewManager returns repositories backed by db, creating the top-level
// buckets if needed.
func NewManager(db *bbolt.DB) (*Manager, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{usersBucket, platformsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("init buckets: %w", err)
	}
	return &Manager{db: db, users: &UserRepository{db: db}, platforms: &PlatformRepository{db: db}}, nil
}

// NewManagerFromFile opens a BBolt database at path.
func NewManagerFromFile(path string, options *bbolt.Options) (*Manager, error) {
	db, err := bbolt.Open(path, 0o600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	m, err := NewManager(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func (m *Manager) Users() users.Repository         { return m.users }
func (m *Manager) Platforms() platforms.Repository { return m.platforms }

func (m *Manager) Close() error {
	return m.db.Close()
}

type UserRepository struct {
	db *bbolt.DB
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	out := *user
	err := r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(usersBucket)
		if b.Get([]byte(user.UserName)) != nil {
			return fmt.Errorf("user %s: %w", user.UserName, common.ErrorAlreadyExists)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		out.ID = int64(seq)
		data, err := json.Marshal(&out)
		if err != nil {
			return err
		}
		return b.Put([]byte(user.UserName), data)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	err := r.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(usersBucket).Get([]byte(login))
		if data == nil {
			return common.ErrorNotFound
		}
		return json.Unmarshal(data, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type PlatformRepository struct {
	db *bbolt.DB
}

func ownerKey(ownerID int64) []byte {
	return []byte(strconv.FormatInt(ownerID, 10))
}

func (r *PlatformRepository) List(ctx context.Context, ownerID int64) ([]models.Platform, error) {
	out := []models.Platform{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(platformsBucket).Bucket(ownerKey(ownerID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var p models.Platform
			if err := json.Unmarshal(v, &p); err != nil {
				return err
			}
			out = append(out, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PlatformRepository) Get(ctx context.Context, ownerID int64, id string) (*models.Platform, error) {
	var p models.Platform
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(platformsBucket).Bucket(ownerKey(ownerID))
		if b == nil {
			return common.ErrorNotFound
		}
		data := b.Get([]byte(id))
		if data == nil {
			return common.ErrorNotFound
		}
		return json.Unmarshal(data, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlatformRepository) Put(ctx context.Context, p *models.Platform) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(platformsBucket).CreateBucketIfNotExists(ownerKey(p.OwnerID))
		if err != nil {
			return err
		}
		data, err := json.Marshal(p)
		if err != nil {
			return err
		}
		return b.Put([]byte(p.ID), data)
	})
}

func (r *PlatformRepository) Delete(ctx context.Context, ownerID int64, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(platformsBucket).Bucket(ownerKey(ownerID))
		if b == nil || b.Get([]byte(id)) == nil {
			return common.ErrorNotFound
		}
		return b.Delete([]byte(id))
	})
}

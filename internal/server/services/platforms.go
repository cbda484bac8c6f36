package services

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/platforms"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultPageSize = common.DefaultPageSize
	MaxPageSize     = 100
)

// PlatformInput is the create/update payload.
type PlatformInput struct {
	Name     string
	URL      string
	Username string
	Password string
}

func (in PlatformInput) validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", in.Name},
		{"url", in.URL},
		{"username", in.Username},
		{"password", in.Password},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, f.name)
		}
	}
	return nil
}

// Page is one page of a user's collection. Number is zero-based.
type Page struct {
	Content []models.Platform
	Number  int
	Size    int
	Total   int
}

// PlatformService manages the per-user platform collections. Collections
// are kept in name order, compared case-insensitively, so the position of a
// new record is decided here and not by the client.
type PlatformService struct {
	repo   platforms.Repository
	logger logging.Logger
	now    func() time.Time

	// writeMu makes the name uniqueness check and the write one step.
	writeMu sync.Mutex
}

func NewPlatformService(repo platforms.Repository, logger logging.Logger) *PlatformService {
	return &PlatformService{
		repo:   repo,
		logger: logger.With("module", "platform_service"),
		now:    time.Now,
	}
}

// nameKey is the form names are compared in: NFC, case-folded, trimmed.
func nameKey(name string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(name)))
}

func (s *PlatformService) sorted(ctx context.Context, ownerID int64) ([]models.Platform, error) {
	list, err := s.repo.List(ctx, ownerID)
	if err != nil {
		s.logger.Error(ctx, "list platforms", "error", err)
		return nil, common.ErrorInternal
	}
	slices.SortFunc(list, func(a, b models.Platform) int {
		return cmp.Or(cmp.Compare(nameKey(a.Name), nameKey(b.Name)), cmp.Compare(a.ID, b.ID))
	})
	return list, nil
}

// Page returns page number of size records. A non-positive size means
// DefaultPageSize; sizes above MaxPageSize are capped.
func (s *PlatformService) Page(ctx context.Context, ownerID int64, number, size int) (*Page, error) {
	if number < 0 {
		return nil, fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	list, err := s.sorted(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	start := min(number*size, len(list))
	end := min(start+size, len(list))
	return &Page{Content: list[start:end], Number: number, Size: size, Total: len(list)}, nil
}

// FindByName returns the record whose name matches name after
// normalisation, or common.ErrorNotFound.
func (s *PlatformService) FindByName(ctx context.Context, ownerID int64, name string) (*models.Platform, error) {
	key := nameKey(name)
	if key == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	list, err := s.sorted(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(list, func(p models.Platform) bool { return nameKey(p.Name) == key })
	if i < 0 {
		return nil, common.ErrorNotFound
	}
	return &list[i], nil
}

func (s *PlatformService) Create(ctx context.Context, ownerID int64, in PlatformInput) (*models.Platform, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.checkNameFree(ctx, ownerID, in.Name, ""); err != nil {
		return nil, err
	}

	y, m, d := s.now().UTC().Date()
	p := &models.Platform{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(in.Name),
		URL:         strings.TrimSpace(in.URL),
		Username:    in.Username,
		Password:    in.Password,
		CreatedDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
	if err := s.repo.Put(ctx, p); err != nil {
		s.logger.Error(ctx, "put platform", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "platform created", "owner", ownerID, "id", p.ID)
	return p, nil
}

// Update replaces the four mutable fields of record id. The id and the
// creation date never change.
func (s *PlatformService) Update(ctx context.Context, ownerID int64, id string, in PlatformInput) (*models.Platform, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkNameFree(ctx, ownerID, in.Name, id); err != nil {
		return nil, err
	}

	p.Name = strings.TrimSpace(in.Name)
	p.URL = strings.TrimSpace(in.URL)
	p.Username = in.Username
	p.Password = in.Password
	if err := s.repo.Put(ctx, p); err != nil {
		s.logger.Error(ctx, "put platform", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "platform updated", "owner", ownerID, "id", id)
	return p, nil
}

func (s *PlatformService) Delete(ctx context.Context, ownerID int64, id string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.logger.Info(ctx, "platform deleted", "owner", ownerID, "id", id)
	return nil
}

// checkNameFree returns common.ErrorAlreadyExists when another record than
// exceptID already uses name.
func (s *PlatformService) checkNameFree(ctx context.Context, ownerID int64, name, exceptID string) error {
	list, err := s.sorted(ctx, ownerID)
	if err != nil {
		return err
	}
	key := nameKey(name)
	for _, p := range list {
		if p.ID != exceptID && nameKey(p.Name) == key {
			return fmt.Errorf("platform %q: %w", strings.TrimSpace(name), common.ErrorAlreadyExists)
		}
	}
	return nil
}

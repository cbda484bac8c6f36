// Package store keeps the client-side view of the platform collection: one
// page of records mirrored from the server, its counters, loading and error
// state, and an optional record pinned by a name search.
//
// Every operation goes through the Store, which checks the session, calls
// the remote API and reconciles the result into its state:
//
//   - CreateRecord refetches the current page, since the server decides
//     where a new record lands.
//   - UpdateRecord replaces the record in place.
//   - DeleteRecord removes it locally and decrements the total. The page
//     may be left short until the next load.
//
// A credential rejection from the server clears the session and the local
// state before the error is returned.
package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
)

// Client is the part of the remote API the Store uses.
type Client interface {
	FetchPage(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error)
	FetchByName(ctx context.Context, name string) (*models.PlatformCredential, error)
	Create(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error)
	Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error)
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, kind client.ExportKind) ([]byte, error)
}

// Gate is the session the Store checks before loading and clears on
// credential rejection.
type Gate interface {
	HasSession() bool
	Clear(ctx context.Context) error
}

// Listener receives a fresh Snapshot after every state change. Listeners run
// one at a time and must not call mutating Store methods synchronously.
type Listener func(Snapshot)

type Option func(*Store)

// WithPageSize overrides the default page size. Non-positive values are
// ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

type Store struct {
	client   Client
	gate     Gate
	logger   logging.Logger
	pageSize int

	mu         sync.Mutex
	state      Snapshot
	inflight   int
	seq        uint64
	cancelLoad context.CancelFunc
	// errFromSearch is set when state.Error was written by FindByName.
	errFromSearch bool
	version       uint64

	notifyMu  sync.Mutex
	delivered uint64

	lmu       sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

func New(c Client, gate Gate, logger logging.Logger, opts ...Option) *Store {
	s := &Store{
		client:    c,
		gate:      gate,
		logger:    logger.With("component", "store"),
		pageSize:  common.DefaultPageSize,
		listeners: make(map[uint64]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = Snapshot{Records: []models.PlatformCredential{}, PageSize: s.pageSize}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *Store) PageSize() int {
	return s.pageSize
}

// Subscribe registers fn and returns a function that removes it. The
// returned function may be called more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			delete(s.listeners, id)
			s.lmu.Unlock()
		})
	}
}

// Init performs the bootstrap load of the first page. Without a session it
// does nothing.
func (s *Store) Init(ctx context.Context) error {
	return s.LoadPage(ctx, 0)
}

// LoadPage fetches page index (zero-based) and replaces the page state with
// the result. Without a session the call is skipped and returns nil.
//
// A newer LoadPage cancels the context of an older one still in flight and
// the older result is discarded with ErrSuperseded.
func (s *Store) LoadPage(ctx context.Context, index int) error {
	if index < 0 {
		return &models.ValidationError{Field: "page", Reason: "must not be negative"}
	}
	if !s.gate.HasSession() {
		s.logger.Debug(ctx, "no session, page load skipped", "page", index)
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancelLoad != nil {
		s.cancelLoad()
	}
	s.seq++
	seq := s.seq
	s.cancelLoad = cancel
	s.inflight++
	s.state.Loading = true
	s.state.Error = ""
	s.errFromSearch = false
	s.changedLocked()
	s.mu.Unlock()
	s.notify()

	page, err := s.client.FetchPage(ctx, index, s.pageSize)

	kind := Classify(err)
	if errors.Is(err, client.ErrNoContent) {
		kind, err = KindNone, nil
		page = nil
	}
	if kind == KindUnauthorized {
		s.clearSession(ctx)
	}

	s.mu.Lock()
	s.inflight--
	s.state.Loading = s.inflight > 0
	current := seq == s.seq
	if current {
		s.cancelLoad = nil
	}

	var result error
	total := s.state.TotalElements
	switch {
	case kind == KindUnauthorized:
		s.resetLocked(client.SessionExpiredMessage)
		result = err
	case !current:
		result = ErrSuperseded
	case kind == KindNone:
		s.applyPageLocked(index, page)
		total = s.state.TotalElements
	case kind == KindCanceled:
		result = err
	default:
		s.state.Records = []models.PlatformCredential{}
		s.state.Error = Message(err)
		result = err
	}
	s.changedLocked()
	s.mu.Unlock()
	s.notify()

	switch kind {
	case KindNone:
		if current {
			s.logger.Debug(ctx, "page loaded", "page", index, "total", total)
		}
	case KindCanceled:
	default:
		s.logger.Warn(ctx, "page load failed", "page", index, "kind", kind, "error", err)
	}
	return result
}

// applyPageLocked installs a fetched page; a nil page is the explicit empty
// state reported by the server when nothing is registered.
func (s *Store) applyPageLocked(index int, page *models.Page[models.PlatformCredential]) {
	s.state.PageIndex = index
	if page == nil {
		s.state.PageIndex = 0
		s.state.Records = []models.PlatformCredential{}
		s.state.TotalPages = 0
		s.state.TotalElements = 0
		return
	}

	p := page.Normalize()
	s.state.Records = slices.Clone(p.Content)
	s.state.TotalPages = p.TotalPages
	s.state.TotalElements = p.TotalElements
}

// Refetch reloads the current page. It is the manual retry after an error.
func (s *Store) Refetch(ctx context.Context) error {
	return s.LoadPage(ctx, s.currentIndex())
}

// GoToPage loads index after checking it against the known page count and
// drops any pinned search result.
func (s *Store) GoToPage(ctx context.Context, index int) error {
	s.mu.Lock()
	total := s.state.TotalPages
	s.mu.Unlock()

	if index < 0 || (index > 0 && index >= total) {
		return ErrPageOutOfRange
	}
	s.ClearSearch()
	return s.LoadPage(ctx, index)
}

func (s *Store) NextPage(ctx context.Context) error {
	return s.GoToPage(ctx, s.currentIndex()+1)
}

func (s *Store) PrevPage(ctx context.Context) error {
	return s.GoToPage(ctx, s.currentIndex()-1)
}

// FindByName pins the record named name as the search overlay. On failure
// the previous overlay is kept and the error is recorded.
func (s *Store) FindByName(ctx context.Context, name string) (*models.PlatformCredential, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		err := &models.ValidationError{Field: "name", Reason: "must not be empty"}
		s.mu.Lock()
		s.state.SearchError = Message(err)
		s.changedLocked()
		s.mu.Unlock()
		s.notify()
		return nil, err
	}

	rec, err := s.client.FetchByName(ctx, name)
	if err != nil {
		switch Classify(err) {
		case KindUnauthorized:
			s.expire(ctx)
		case KindCanceled:
		default:
			msg := Message(err)
			s.mu.Lock()
			s.state.Error = msg
			s.state.SearchError = msg
			s.errFromSearch = true
			s.changedLocked()
			s.mu.Unlock()
			s.notify()
		}
		s.logger.Debug(ctx, "search failed", "name", name, "error", err)
		return nil, err
	}

	found := *rec
	s.mu.Lock()
	s.state.Overlay = &found
	s.state.SearchError = ""
	if s.errFromSearch {
		s.state.Error = ""
		s.errFromSearch = false
	}
	s.changedLocked()
	s.mu.Unlock()
	s.notify()

	out := found
	return &out, nil
}

// ClearSearch drops the overlay and any search error. The page is untouched.
func (s *Store) ClearSearch() {
	s.mu.Lock()
	if s.state.Overlay == nil && s.state.SearchError == "" && !s.errFromSearch {
		s.mu.Unlock()
		return
	}
	s.state.Overlay = nil
	s.state.SearchError = ""
	if s.errFromSearch {
		s.state.Error = ""
		s.errFromSearch = false
	}
	s.changedLocked()
	s.mu.Unlock()
	s.notify()
}

// DropOverlay unpins the search result and keeps any error, so a failed
// search no longer shows the record found before it.
func (s *Store) DropOverlay() {
	s.mu.Lock()
	if s.state.Overlay == nil {
		s.mu.Unlock()
		return
	}
	s.state.Overlay = nil
	s.changedLocked()
	s.mu.Unlock()
	s.notify()
}

// CreateRecord stores a new record and then reloads the current page. A
// failed reload is reflected in the state, not in the returned error.
func (s *Store) CreateRecord(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.beginMutation()
	rec, err := s.client.Create(ctx, fields)
	if err != nil {
		return nil, s.mutationFailed(ctx, err)
	}
	s.logger.Info(ctx, "platform created", "id", rec.ID, "name", rec.Name)

	if err := s.LoadPage(ctx, s.currentIndex()); err != nil && Classify(err) != KindCanceled {
		s.logger.Warn(ctx, "reload after create failed", "error", err)
	}
	return rec, nil
}

// UpdateRecord replaces the four mutable fields of record id and installs
// the record returned by the server in place in the page and the overlay.
func (s *Store) UpdateRecord(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &models.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	s.beginMutation()
	rec, err := s.client.Update(ctx, id, fields)
	if err != nil {
		return nil, s.mutationFailed(ctx, err)
	}

	updated := *rec
	if updated.ID == "" {
		updated.ID = id
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		if updated.CreatedDate.IsZero() {
			updated.CreatedDate = s.state.Records[i].CreatedDate
		}
		s.state.Records[i] = updated
	}
	if s.state.Overlay != nil && s.state.Overlay.ID == id {
		if updated.CreatedDate.IsZero() {
			updated.CreatedDate = s.state.Overlay.CreatedDate
		}
		o := updated
		s.state.Overlay = &o
	}
	s.changedLocked()
	s.mu.Unlock()
	s.notify()

	s.logger.Info(ctx, "platform updated", "id", id)
	return &updated, nil
}

// DeleteRecord removes record id on the server, then drops it from the page
// and decrements the total. The page count only changes when the total
// reaches zero.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &models.ValidationError{Field: "id", Reason: "must not be empty"}
	}

	s.beginMutation()
	if err := s.client.Delete(ctx, id); err != nil {
		return s.mutationFailed(ctx, err)
	}

	s.mu.Lock()
	if i := s.indexLocked(id); i >= 0 {
		s.state.Records = slices.Delete(s.state.Records, i, i+1)
	}
	s.state.TotalElements = max(s.state.TotalElements-1, 0)
	if s.state.TotalElements == 0 {
		s.state.TotalPages = 0
	}
	if s.state.Overlay != nil && s.state.Overlay.ID == id {
		s.state.Overlay = nil
	}
	s.changedLocked()
	s.mu.Unlock()
	s.notify()

	s.logger.Info(ctx, "platform deleted", "id", id)
	return nil
}

// Export fetches a server-side export of the whole collection.
func (s *Store) Export(ctx context.Context, kind client.ExportKind) ([]byte, error) {
	data, err := s.client.Export(ctx, kind)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return data, nil
}

// Reset discards all state and any in-flight load. Used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked("")
	s.changedLocked()
	s.mu.Unlock()
	s.notify()
}

// fail applies the shared credential-rejection handling and returns err.
func (s *Store) fail(ctx context.Context, err error) error {
	if Classify(err) == KindUnauthorized {
		s.expire(ctx)
	}
	return err
}

// beginMutation clears the error shown from an earlier failure.
func (s *Store) beginMutation() {
	s.mu.Lock()
	if s.state.Error == "" {
		s.mu.Unlock()
		return
	}
	s.state.Error = ""
	s.errFromSearch = false
	s.changedLocked()
	s.mu.Unlock()
	s.notify()
}

// mutationFailed records a failed create, update or delete in the state and
// returns err. Credential rejection resets the state instead.
func (s *Store) mutationFailed(ctx context.Context, err error) error {
	switch Classify(err) {
	case KindUnauthorized:
		s.expire(ctx)
	case KindCanceled, KindValidation:
	default:
		s.mu.Lock()
		s.state.Error = Message(err)
		s.errFromSearch = false
		s.changedLocked()
		s.mu.Unlock()
		s.notify()
	}
	return err
}

// expire clears the session and then the local state.
func (s *Store) expire(ctx context.Context) {
	s.clearSession(ctx)

	s.mu.Lock()
	s.resetLocked(client.SessionExpiredMessage)
	s.changedLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) clearSession(ctx context.Context) {
	if err := s.gate.Clear(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "clear session", "error", err)
	}
	s.logger.Info(ctx, "session expired")
}

// resetLocked empties the state and invalidates every in-flight load.
func (s *Store) resetLocked(msg string) {
	s.seq++
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.errFromSearch = false
	s.state = Snapshot{
		Records:  []models.PlatformCredential{},
		PageSize: s.pageSize,
		Loading:  s.inflight > 0,
		Error:    msg,
	}
}

func (s *Store) currentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PageIndex
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.state.Records, func(r models.PlatformCredential) bool { return r.ID == id })
}

func (s *Store) changedLocked() {
	s.version++
}

// notify delivers the latest state to the listeners. Deliveries are
// serialized and a version already delivered is skipped, so listeners never
// observe an older state after a newer one.
func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.version == s.delivered {
		s.mu.Unlock()
		return
	}
	s.delivered = s.version
	snap := s.state.clone()
	s.mu.Unlock()

	s.lmu.Lock()
	ids := slices.Sorted(maps.Keys(s.listeners))
	ls := make([]Listener, 0, len(ids))
	for _, id := range ids {
		ls = append(ls, s.listeners[id])
	}
	s.lmu.Unlock()

	for _, fn := range ls {
		fn(snap.clone())
	}
}

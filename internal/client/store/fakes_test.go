package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
)

// fakeClient serves an in-memory collection sorted by name, the way the
// backend does. Any *Err field short-circuits the matching call.
type fakeClient struct {
	mu      sync.Mutex
	records []models.PlatformCredential
	nextID  int
	calls   map[string]int

	// fetchPage replaces the default paging when set.
	fetchPage func(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error)

	fetchErr  error
	byNameErr error
	createErr error
	updateErr error
	deleteErr error
	exportErr error

	lastFields models.Fields
	lastID     string

	// trimOnUpdate stores names and URLs trimmed, as the backend does.
	trimOnUpdate bool
}

func newFakeClient(n int) *fakeClient {
	f := &fakeClient{calls: map[string]int{}}
	for i := 0; i < n; i++ {
		f.add(models.Fields{
			Name:     fmt.Sprintf("Platform %02d", i),
			URL:      fmt.Sprintf("https://p%02d.example", i),
			Username: "user",
			Password: "secret",
		})
	}
	f.calls = map[string]int{}
	return f
}

func (f *fakeClient) add(fields models.Fields) models.PlatformCredential {
	f.nextID++
	rec := models.PlatformCredential{ID: fmt.Sprintf("id-%d", f.nextID)}.WithFields(fields)
	f.records = append(f.records, rec)
	slices.SortFunc(f.records, func(a, b models.PlatformCredential) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return rec
}

func (f *fakeClient) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) FetchPage(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error) {
	f.mu.Lock()
	f.calls["fetch"]++
	hook, ferr := f.fetchPage, f.fetchErr
	f.mu.Unlock()

	if hook != nil {
		return hook(ctx, page, size)
	}
	if ferr != nil {
		return nil, ferr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.records) == 0 {
		return nil, client.ErrNoContent
	}
	start := min(page*size, len(f.records))
	end := min(start+size, len(f.records))
	p := models.NewPage(slices.Clone(f.records[start:end]), page, size, len(f.records))
	return &p, nil
}

func (f *fakeClient) FetchByName(ctx context.Context, name string) (*models.PlatformCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["byName"]++
	if f.byNameErr != nil {
		return nil, f.byNameErr
	}
	for _, r := range f.records {
		if r.Name == name {
			out := r
			return &out, nil
		}
	}
	return nil, &client.RemoteError{Status: 404, Message: "platform not found", Err: client.ErrNotFound}
}

func (f *fakeClient) Create(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["create"]++
	f.lastFields = fields
	if f.createErr != nil {
		return nil, f.createErr
	}
	rec := f.add(fields)
	return &rec, nil
}

func (f *fakeClient) Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	f.lastID, f.lastFields = id, fields
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.trimOnUpdate {
		fields.Name = strings.TrimSpace(fields.Name)
		fields.URL = strings.TrimSpace(fields.URL)
	}
	for i, r := range f.records {
		if r.ID == id {
			f.records[i] = r.WithFields(fields)
			out := f.records[i]
			return &out, nil
		}
	}
	return nil, &client.RemoteError{Status: 404, Message: "platform not found", Err: client.ErrNotFound}
}

func (f *fakeClient) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	f.lastID = id
	if f.deleteErr != nil {
		return f.deleteErr
	}
	i := slices.IndexFunc(f.records, func(r models.PlatformCredential) bool { return r.ID == id })
	if i < 0 {
		return &client.RemoteError{Status: 404, Message: "platform not found", Err: client.ErrNotFound}
	}
	f.records = slices.Delete(f.records, i, i+1)
	return nil
}

func (f *fakeClient) Export(ctx context.Context, kind client.ExportKind) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["export"]++
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return []byte("export:" + string(kind)), nil
}

// partialUpdateClient answers updates with the fields only, leaving id and
// creation date empty.
type partialUpdateClient struct {
	*fakeClient
}

func (p *partialUpdateClient) Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error) {
	if _, err := p.fakeClient.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	out := models.PlatformCredential{}.WithFields(fields)
	return &out, nil
}

type fakeGate struct {
	mu     sync.Mutex
	token  string
	clears int
}

func (g *fakeGate) HasSession() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != ""
}

func (g *fakeGate) Clear(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clears++
	g.token = ""
	return nil
}

func (g *fakeGate) clearCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clears
}

var errUnauthorized = &client.RemoteError{Status: 401, Message: client.SessionExpiredMessage, Err: client.ErrUnauthorized}

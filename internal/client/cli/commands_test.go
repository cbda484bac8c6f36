package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/client/store"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI keeps records in insertion order; tests add them already sorted.
type fakeAPI struct {
	records []models.PlatformCredential
	nextID  int

	err      error
	exported []byte
	created  models.Fields
	updated  string
	deleted  string
}

func (f *fakeAPI) add(name string) {
	f.nextID++
	f.records = append(f.records, models.PlatformCredential{ID: fmt.Sprintf("id-%d", f.nextID)}.WithFields(models.Fields{
		Name: name, URL: "https://" + strings.ToLower(name) + ".example", Username: "user", Password: "pw-" + name,
	}))
}

func (f *fakeAPI) FetchPage(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.records) == 0 {
		return nil, client.ErrNoContent
	}
	start := min(page*size, len(f.records))
	end := min(start+size, len(f.records))
	p := models.NewPage(append([]models.PlatformCredential(nil), f.records[start:end]...), page, size, len(f.records))
	return &p, nil
}

func (f *fakeAPI) FetchByName(ctx context.Context, name string) (*models.PlatformCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.records {
		if r.Name == name {
			out := r
			return &out, nil
		}
	}
	return nil, &client.RemoteError{Status: 404, Message: "platform not found", Err: client.ErrNotFound}
}

func (f *fakeAPI) Create(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = fields
	f.add(fields.Name)
	out := f.records[len(f.records)-1]
	return &out, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = id
	for i, r := range f.records {
		if r.ID == id {
			f.records[i] = r.WithFields(fields)
			out := f.records[i]
			return &out, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	for i, r := range f.records {
		if r.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeAPI) Export(ctx context.Context, kind client.ExportKind) ([]byte, error) {
	return f.exported, f.err
}

type fakeGate struct {
	user    models.User
	expires time.Time
	active  bool
	cleared int
}

func (g *fakeGate) HasSession() bool     { return g.active }
func (g *fakeGate) User() models.User    { return g.user }
func (g *fakeGate) ExpiresAt() time.Time { return g.expires }
func (g *fakeGate) Clear(ctx context.Context) error {
	g.active = false
	g.cleared++
	return nil
}

type fakeAuth struct {
	gate *fakeGate
	err  error

	username string
	password string
}

func (f *fakeAuth) login(username string, password []byte) (models.User, error) {
	f.username, f.password = username, string(password)
	if f.err != nil {
		return models.User{}, f.err
	}
	f.gate.active = true
	f.gate.user = models.User{ID: 1, Username: username}
	return f.gate.user, nil
}

func (f *fakeAuth) Register(ctx context.Context, username string, password []byte) (models.User, error) {
	return f.login(username, password)
}

func (f *fakeAuth) Login(ctx context.Context, username string, password []byte) (models.User, error) {
	return f.login(username, password)
}

func (f *fakeAuth) Logout(ctx context.Context) error {
	return f.gate.Clear(ctx)
}

func (f *fakeAuth) Restore(ctx context.Context) (models.User, bool, error) {
	return f.gate.user, f.gate.active, nil
}

func (f *fakeAuth) Ping(ctx context.Context) error  { return nil }
func (f *fakeAuth) Close(ctx context.Context) error { return nil }

type fakeExporter struct {
	kind client.ExportKind
	loc  string
	err  error
}

func (f *fakeExporter) Export(ctx context.Context, kind client.ExportKind) (string, error) {
	f.kind = kind
	return f.loc, f.err
}

type harness struct {
	app  *App
	api  *fakeAPI
	gate *fakeGate
	auth *fakeAuth
	exp  *fakeExporter
	out  *bytes.Buffer
}

func newHarness(t *testing.T, input string, loggedIn bool, names ...string) *harness {
	t.Helper()
	api := &fakeAPI{}
	for _, n := range names {
		api.add(n)
	}
	gate := &fakeGate{active: loggedIn, user: models.User{ID: 1, Username: "alice"}}
	auth := &fakeAuth{gate: gate}
	exp := &fakeExporter{loc: "/tmp/platforms.pdf"}
	out := &bytes.Buffer{}

	st := store.New(api, gate, logging.Nop(), store.WithPageSize(2))
	a := newApp(auth, st, gate, exp, logging.Nop(), strings.NewReader(input), out)
	t.Cleanup(a.unsubscribe)

	return &harness{app: a, api: api, gate: gate, auth: auth, exp: exp, out: out}
}

func stubInput(t *testing.T, password string, yes bool) {
	t.Helper()
	oldPw, oldConfirm := getPassword, confirm
	t.Cleanup(func() { getPassword, confirm = oldPw, oldConfirm })
	getPassword = func(string, io.Writer) ([]byte, error) { return []byte(password), nil }
	confirm = func(*bufio.Reader, string, io.Writer) (bool, error) { return yes, nil }
}

func TestLogin_LoadsFirstPage(t *testing.T) {
	stubInput(t, "pw", false)
	h := newHarness(t, "bob\n", false, "Alpha", "Beta", "Gamma")

	require.NoError(t, h.app.Login(context.Background()))

	assert.Equal(t, "bob", h.auth.username)
	assert.Equal(t, "pw", h.auth.password)
	snap := h.app.store.Snapshot()
	assert.Len(t, snap.Records, 2)
	assert.Equal(t, 2, snap.TotalPages)
	assert.Contains(t, h.out.String(), "Welcome, bob!")
	assert.Contains(t, h.out.String(), "Page 1 of 2")
}

func TestLogin_Rejected(t *testing.T) {
	stubInput(t, "bad", false)
	h := newHarness(t, "bob\n", false, "Alpha")
	h.auth.err = &client.RemoteError{Status: 401, Message: "invalid credentials", Err: client.ErrBadCredentials}

	require.Error(t, h.app.Login(context.Background()))
	assert.Contains(t, h.out.String(), "Error: invalid credentials")
	assert.Empty(t, h.app.store.Snapshot().Records)
}

func TestLogout_ResetsStore(t *testing.T) {
	h := newHarness(t, "", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.store.Init(ctx))
	require.NotEmpty(t, h.app.store.Snapshot().Records)

	require.NoError(t, h.app.Logout(ctx))
	assert.False(t, h.gate.active)
	assert.Empty(t, h.app.store.Snapshot().Records)
	assert.Contains(t, h.out.String(), "Logged out.")
}

func TestPaging(t *testing.T) {
	h := newHarness(t, "", true, "A", "B", "C", "D", "E")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	require.NoError(t, h.app.Next(ctx))
	assert.Equal(t, 1, h.app.store.Snapshot().PageIndex)

	require.NoError(t, h.app.Page(ctx, "3"))
	assert.Equal(t, []string{"E"}, names(h.app.store.Snapshot().Records))

	require.ErrorIs(t, h.app.Next(ctx), store.ErrPageOutOfRange)
	assert.Contains(t, h.out.String(), "No such page (1-3).")

	require.NoError(t, h.app.Prev(ctx))
	assert.Equal(t, 1, h.app.store.Snapshot().PageIndex)

	require.Error(t, h.app.Page(ctx, "x"))
	assert.Contains(t, h.out.String(), "Usage: page <n>")
}

func TestFindAndClear(t *testing.T) {
	h := newHarness(t, "", true, "Alpha", "Beta", "My Bank")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	require.NoError(t, h.app.Find(ctx, "My Bank"))
	snap := h.app.store.Snapshot()
	require.NotNil(t, snap.Overlay)
	assert.Equal(t, "My Bank", snap.Overlay.Name)
	assert.Contains(t, h.out.String(), "Search result")

	h.out.Reset()
	require.Error(t, h.app.Find(ctx, "Nope"))
	snap = h.app.store.Snapshot()
	assert.Equal(t, "platform not found", snap.SearchError)
	assert.Nil(t, snap.Overlay, "a failed search unpins the earlier result")
	assert.Equal(t, []string{"Alpha", "Beta"}, names(snap.Visible()))
	assert.Contains(t, h.out.String(), "! platform not found")

	require.NoError(t, h.app.ClearSearch(ctx))
	snap = h.app.store.Snapshot()
	assert.Nil(t, snap.Overlay)
	assert.Empty(t, snap.Error)
}

func TestAdd(t *testing.T) {
	stubInput(t, "s3cret", false)
	h := newHarness(t, "Zeta\nhttps://zeta.example\nz\n", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	require.NoError(t, h.app.Add(ctx))
	assert.Equal(t, models.Fields{Name: "Zeta", URL: "https://zeta.example", Username: "z", Password: "s3cret"}, h.api.created)
	assert.Equal(t, 2, h.app.store.Snapshot().TotalElements)
	assert.Contains(t, h.out.String(), "Created Zeta (id-2).")
}

func TestAdd_Invalid(t *testing.T) {
	stubInput(t, "s3cret", false)
	h := newHarness(t, "Zeta\n \nz\n", true)

	require.ErrorIs(t, h.app.Add(context.Background()), models.ErrValidation)
	assert.Contains(t, h.out.String(), "Error: validation error: url")
	assert.Empty(t, h.api.created)
}

func TestAdd_RemoteFailureRenderedOnce(t *testing.T) {
	stubInput(t, "s3cret", false)
	h := newHarness(t, "Alpha\nhttps://alpha.example\nz\n", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	h.api.err = &client.RemoteError{Status: 409, Message: `platform "Alpha": already exists`}
	h.out.Reset()
	require.Error(t, h.app.Add(ctx))

	out := h.out.String()
	assert.Equal(t, 1, strings.Count(out, `platform "Alpha": already exists`))
	assert.NotContains(t, out, "Error: ")
	assert.Equal(t, `platform "Alpha": already exists`, h.app.store.Snapshot().Error)
}

func TestEdit(t *testing.T) {
	stubInput(t, "", false)
	h := newHarness(t, "Alpha Two\n\n\n", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	require.NoError(t, h.app.Edit(ctx, "id-1"))
	assert.Equal(t, "id-1", h.api.updated)
	rec := h.app.store.Snapshot().Records[0]
	assert.Equal(t, "Alpha Two", rec.Name)
	assert.Equal(t, "pw-Alpha", rec.Password)

	require.ErrorIs(t, h.app.Edit(ctx, "id-9"), client.ErrNotFound)
	assert.Contains(t, h.out.String(), `No platform "id-9" on this page.`)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		stubInput(t, "", true)
		h := newHarness(t, "", true, "Alpha", "Beta")
		require.NoError(t, h.app.List(ctx))

		require.NoError(t, h.app.Delete(ctx, "id-1"))
		assert.Equal(t, "id-1", h.api.deleted)
		assert.Equal(t, 1, h.app.store.Snapshot().TotalElements)
		assert.Contains(t, h.out.String(), "Deleted Alpha.")
	})

	t.Run("declined", func(t *testing.T) {
		stubInput(t, "", false)
		h := newHarness(t, "", true, "Alpha")
		require.NoError(t, h.app.List(ctx))

		require.NoError(t, h.app.Delete(ctx, "id-1"))
		assert.Empty(t, h.api.deleted)
		assert.Contains(t, h.out.String(), "Cancelled.")
	})
}

func TestShow(t *testing.T) {
	h := newHarness(t, "", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	require.NoError(t, h.app.Show(ctx, "id-1"))
	assert.Contains(t, h.out.String(), "pw-Alpha")

	require.Error(t, h.app.Show(ctx, "id-7"))
}

func TestExport(t *testing.T) {
	h := newHarness(t, "", true)
	ctx := context.Background()

	require.NoError(t, h.app.Export(ctx, "PDF"))
	assert.Equal(t, client.ExportDocument, h.exp.kind)
	assert.Contains(t, h.out.String(), "Export saved to /tmp/platforms.pdf")

	require.Error(t, h.app.Export(ctx, "csv"))
	assert.Contains(t, h.out.String(), "Usage: export excel|pdf")

	h.exp.err = errors.New("disk full")
	require.Error(t, h.app.Export(ctx, "excel"))
	assert.Contains(t, h.out.String(), "Error: disk full")
}

func TestSessionExpiry_ClearsAndReports(t *testing.T) {
	h := newHarness(t, "", true, "Alpha")
	ctx := context.Background()
	require.NoError(t, h.app.List(ctx))

	h.api.err = &client.RemoteError{Status: 401, Message: "token expired", Err: client.ErrUnauthorized}
	require.Error(t, h.app.Retry(ctx))

	assert.Equal(t, 1, h.gate.cleared)
	assert.Empty(t, h.app.store.Snapshot().Records)
	assert.Contains(t, h.out.String(), "! "+client.SessionExpiredMessage)
	assert.NotContains(t, h.out.String(), "Error: ")
}

func TestGetStatus(t *testing.T) {
	h := newHarness(t, "", false)
	assert.Empty(t, h.app.getStatus())

	h.gate.active = true
	assert.Equal(t, "(alice)", h.app.getStatus())

	h.gate.expires = time.Date(2030, 1, 2, 15, 4, 0, 0, time.Local)
	assert.Equal(t, "(alice, until 15:04 2 Jan)", h.app.getStatus())
}

func TestRun_RestoresSessionAndExits(t *testing.T) {
	h := newHarness(t, "list\nexit\n", true, "Alpha")

	require.NoError(t, h.app.Run(context.Background()))
	s := h.out.String()
	assert.Contains(t, s, "Signed in as alice")
	assert.Contains(t, s, "Alpha")
	assert.Contains(t, s, "Bye!")
}

func names(rs []models.PlatformCredential) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Name)
	}
	return out
}

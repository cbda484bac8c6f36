package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeAuthClient struct {
	RegisterResp *models.AuthResponse
	RegisterErr  error
	LoginResp    *models.AuthResponse
	LoginErr     error
	PingErr      error
	CloseErr     error

	LastRegister models.AuthRequest
	LastLogin    models.AuthRequest
	Calls        int
	Closed       bool
}

func (f *fakeAuthClient) Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	f.Calls++
	f.LastRegister = req
	return f.RegisterResp, f.RegisterErr
}

func (f *fakeAuthClient) Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	f.Calls++
	f.LastLogin = req
	return f.LoginResp, f.LoginErr
}

func (f *fakeAuthClient) Ping(ctx context.Context) error {
	f.Calls++
	return f.PingErr
}

func (f *fakeAuthClient) Close() error {
	f.Closed = true
	return f.CloseErr
}

type fakeGate struct {
	token string
	user  models.User

	StartErr   error
	RestoreErr error
	ClearErr   error

	Started  []models.AuthResponse
	Clears   int
	Restores int
	// restored is installed by Restore.
	restored *models.AuthResponse
}

func (g *fakeGate) Start(ctx context.Context, resp models.AuthResponse) error {
	if g.StartErr != nil {
		return g.StartErr
	}
	g.Started = append(g.Started, resp)
	g.token, g.user = resp.Token, resp.User()
	return nil
}

func (g *fakeGate) Restore(ctx context.Context) error {
	g.Restores++
	if g.RestoreErr != nil {
		return g.RestoreErr
	}
	if g.restored != nil {
		g.token, g.user = g.restored.Token, g.restored.User()
	}
	return nil
}

func (g *fakeGate) Clear(ctx context.Context) error {
	g.Clears++
	g.token, g.user = "", models.User{}
	return g.ClearErr
}

func (g *fakeGate) HasSession() bool   { return g.token != "" }
func (g *fakeGate) User() models.User { return g.user }

func newAuth(c *fakeAuthClient, g *fakeGate) AuthService {
	return NewAuthService(c, g, logging.Nop())
}

// ---- tests ----

func TestLogin_StartsSessionAndWipesPassword(t *testing.T) {
	c := &fakeAuthClient{LoginResp: &models.AuthResponse{Token: "T", Username: "alice", ID: 4}}
	g := &fakeGate{}
	pw := []byte("hunter2")

	u, err := newAuth(c, g).Login(context.Background(), "alice", pw)
	require.NoError(t, err)
	require.Equal(t, models.User{ID: 4, Username: "alice"}, u)
	require.Equal(t, models.AuthRequest{Username: "alice", Password: "hunter2"}, c.LastLogin)
	require.Len(t, g.Started, 1)
	require.True(t, g.HasSession())
	require.Equal(t, make([]byte, len(pw)), pw)
}

func TestLogin_BadCredentialsDoNotStartSession(t *testing.T) {
	remote := &client.RemoteError{Status: 401, Message: "invalid credentials", Err: client.ErrBadCredentials}
	c := &fakeAuthClient{LoginErr: remote}
	g := &fakeGate{}

	_, err := newAuth(c, g).Login(context.Background(), "alice", []byte("x"))
	require.ErrorIs(t, err, client.ErrBadCredentials)
	require.Empty(t, g.Started)
	require.False(t, g.HasSession())
}

func TestLogin_Validation(t *testing.T) {
	c := &fakeAuthClient{}
	g := &fakeGate{}

	_, err := newAuth(c, g).Login(context.Background(), " ", []byte("x"))
	require.ErrorIs(t, err, models.ErrValidation)
	_, err = newAuth(c, g).Login(context.Background(), "alice", nil)
	require.ErrorIs(t, err, models.ErrValidation)
	require.Zero(t, c.Calls)
}

func TestLogin_EmptyTokenIsRejected(t *testing.T) {
	c := &fakeAuthClient{LoginResp: &models.AuthResponse{Username: "alice"}}
	g := &fakeGate{}

	_, err := newAuth(c, g).Login(context.Background(), "alice", []byte("x"))
	require.Error(t, err)
	require.Empty(t, g.Started)
}

func TestLogin_SwitchingUserClearsPreviousSession(t *testing.T) {
	c := &fakeAuthClient{LoginResp: &models.AuthResponse{Token: "B", Username: "bob"}}
	g := &fakeGate{token: "A", user: models.User{Username: "alice"}}

	_, err := newAuth(c, g).Login(context.Background(), "bob", []byte("x"))
	require.NoError(t, err)
	require.Equal(t, 1, g.Clears)
	require.Equal(t, "bob", g.User().Username)
}

func TestLogin_SaveSessionError(t *testing.T) {
	c := &fakeAuthClient{LoginResp: &models.AuthResponse{Token: "T", Username: "alice"}}
	g := &fakeGate{StartErr: errors.New("disk full")}

	_, err := newAuth(c, g).Login(context.Background(), "alice", []byte("x"))
	require.ErrorContains(t, err, "save session")
	require.ErrorContains(t, err, "disk full")
}

func TestRegister_StartsSession(t *testing.T) {
	c := &fakeAuthClient{RegisterResp: &models.AuthResponse{Token: "T", Username: "carol", ID: 9}}
	g := &fakeGate{}

	u, err := newAuth(c, g).Register(context.Background(), "carol", []byte("pw"))
	require.NoError(t, err)
	require.Equal(t, "carol", u.Username)
	require.Equal(t, "carol", c.LastRegister.Username)
	require.True(t, g.HasSession())
}

func TestRegister_ServerMessagePassesThrough(t *testing.T) {
	c := &fakeAuthClient{RegisterErr: &client.RemoteError{Status: 409, Message: "username already taken"}}

	_, err := newAuth(c, &fakeGate{}).Register(context.Background(), "carol", []byte("pw"))
	require.EqualError(t, err, "username already taken")
}

func TestLogout(t *testing.T) {
	g := &fakeGate{token: "T"}
	svc := newAuth(&fakeAuthClient{}, g)

	require.NoError(t, svc.Logout(context.Background()))
	require.NoError(t, svc.Logout(context.Background()))
	require.False(t, g.HasSession())
	require.Equal(t, 2, g.Clears)

	g.ClearErr = errors.New("locked")
	require.ErrorContains(t, svc.Logout(context.Background()), "logout")
}

func TestRestore(t *testing.T) {
	g := &fakeGate{}
	svc := newAuth(&fakeAuthClient{}, g)

	_, ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.False(t, ok)

	g.restored = &models.AuthResponse{Token: "T", Username: "alice", ID: 1}
	u, ok, err := svc.Restore(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", u.Username)

	g.RestoreErr = errors.New("db")
	_, _, err = svc.Restore(context.Background())
	require.Error(t, err)
}

func TestPingAndClose(t *testing.T) {
	c := &fakeAuthClient{PingErr: client.ErrUnavailable}
	svc := newAuth(c, &fakeGate{})

	require.ErrorIs(t, svc.Ping(context.Background()), client.ErrUnavailable)
	require.NoError(t, svc.Close(context.Background()))
	require.True(t, c.Closed)
}

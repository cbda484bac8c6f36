package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
)

const maxErrorBody = 1 << 20

// operation names a remote call and its fallback error message.
type operation struct {
	name     string
	fallback string
}

var (
	opRegister = operation{"register", "registration failed"}
	opLogin    = operation{"login", "invalid credentials"}
	opPing     = operation{"ping", "server unavailable"}
	opList     = operation{"list", "failed to load platforms"}
	opByName   = operation{"find by name", "failed to find platform by name"}
	opCreate   = operation{"create", "failed to create platform"}
	opUpdate   = operation{"update", "failed to update platform"}
	opDelete   = operation{"delete", "failed to delete platform"}
	opExport   = operation{"export", "failed to export platforms"}
)

type authRequiredKey struct{}

// errNoToken is returned by the transport before any network I/O when an
// authenticated call is attempted without a session.
var errNoToken = errors.New("no authentication token")

// authTransport injects the bearer token into requests marked as
// authenticated.
type authTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Context().Value(authRequiredKey{}) == nil {
		return t.base.RoundTrip(req)
	}

	token := t.tokens.Token()
	if token == "" {
		return nil, errNoToken
	}

	r := req.Clone(req.Context())
	r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	return t.base.RoundTrip(r)
}

// HTTPClient talks to the SecretKey REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// NewHTTPClient builds a client for baseURL. Authenticated calls take their
// token from tokens at request time. timeout <= 0 disables the per-request
// timeout.
func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration, logger logging.Logger) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("server url %q: missing host", baseURL)
	}

	hc := &http.Client{
		Timeout:   timeout,
		Transport: &authTransport{base: http.DefaultTransport, tokens: tokens},
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
		logger:  logger.With("component", "http-client"),
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, opPing, http.MethodGet, common.RouteHealth, nil, nil, false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &RemoteError{Status: resp.StatusCode, Message: opPing.fallback, Err: ErrUnavailable}
	}
	return nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.callJSON(ctx, opRegister, http.MethodPost, common.RouteRegister, nil, req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.callJSON(ctx, opLogin, http.MethodPost, common.RouteLogin, nil, req, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) FetchPage(ctx context.Context, page, size int) (*models.Page[models.PlatformCredential], error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))

	resp, err := c.do(ctx, opList, http.MethodGet, common.RoutePlatforms, q, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoContent
	case resp.StatusCode >= 300:
		return nil, c.mapStatus(opList, resp)
	}

	var p models.Page[models.PlatformCredential]
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Message: opList.fallback, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	p = p.Normalize()
	return &p, nil
}

func (c *HTTPClient) FetchByName(ctx context.Context, name string) (*models.PlatformCredential, error) {
	q := url.Values{}
	q.Set("name", name)

	var out models.PlatformCredential
	if err := c.callJSON(ctx, opByName, http.MethodGet, common.RoutePlatformByName, q, nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Create(ctx context.Context, fields models.Fields) (*models.PlatformCredential, error) {
	var out models.PlatformCredential
	if err := c.callJSON(ctx, opCreate, http.MethodPost, common.RoutePlatforms, nil, fields, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Update(ctx context.Context, id string, fields models.Fields) (*models.PlatformCredential, error) {
	var out models.PlatformCredential
	if err := c.callJSON(ctx, opUpdate, http.MethodPut, platformPath(id), nil, fields, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, opDelete, http.MethodDelete, platformPath(id), nil, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.mapStatus(opDelete, resp)
	}
	return nil
}

func (c *HTTPClient) Export(ctx context.Context, kind ExportKind) ([]byte, error) {
	route := common.RouteExportExcel
	if kind == ExportDocument {
		route = common.RouteExportPDF
	}

	resp, err := c.do(ctx, opExport, http.MethodGet, route, nil, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, c.mapStatus(opExport, resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Message: opExport.fallback, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}
	return data, nil
}

func platformPath(id string) string {
	return common.RoutePlatforms + url.PathEscape(id)
}

// callJSON performs a request with an optional JSON body and decodes a JSON
// response into out.
func (c *HTTPClient) callJSON(ctx context.Context, op operation, method, path string, q url.Values, in, out any, authenticated bool) error {
	resp, err := c.do(ctx, op, method, path, q, in, authenticated)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return c.mapStatus(op, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Status: resp.StatusCode, Message: op.fallback, Err: fmt.Errorf("%w: %v", ErrInvalidResponse, err)}
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, op operation, method, path string, q url.Values, in any, authenticated bool) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op.name, err)
		}
		body = bytes.NewReader(b)
	}

	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	if authenticated {
		ctx = context.WithValue(ctx, authRequiredKey{}, true)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, errNoToken) {
			return nil, &RemoteError{Status: http.StatusUnauthorized, Message: SessionExpiredMessage, Err: ErrUnauthorized}
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", op.name, ctxErr)
		}
		c.logger.Warn(ctx, "request failed", "op", op.name, "method", method, "path", path, "error", err)
		return nil, &RemoteError{Message: op.fallback, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
	}

	c.logger.Debug(ctx, "request", "op", op.name, "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

// mapStatus turns a non-2xx response into a RemoteError.
func (c *HTTPClient) mapStatus(op operation, resp *http.Response) error {
	msg := readErrorMessage(resp.Body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if op == opLogin || op == opRegister {
			return &RemoteError{Status: resp.StatusCode, Message: orDefault(msg, op.fallback), Err: ErrBadCredentials}
		}
		return &RemoteError{Status: resp.StatusCode, Message: SessionExpiredMessage, Err: ErrUnauthorized}
	case http.StatusNotFound:
		return &RemoteError{Status: resp.StatusCode, Message: orDefault(msg, op.fallback), Err: ErrNotFound}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &RemoteError{Status: resp.StatusCode, Message: orDefault(msg, op.fallback), Err: ErrUnavailable}
	default:
		return &RemoteError{Status: resp.StatusCode, Message: orDefault(msg, op.fallback)}
	}
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var er models.ErrorResponse
	if err := json.Unmarshal(data, &er); err != nil {
		return ""
	}
	return strings.TrimSpace(er.Message)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

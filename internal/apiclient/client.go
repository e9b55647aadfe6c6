package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/pkg/telemetry"
)

// maxErrorBody bounds how much of an error response is read
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token for protected calls
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Config holds API client settings
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the booking REST backend. It is safe for concurrent use;
// WithTokens returns a copy bound to one session.
type Client struct {
	baseURL  string
	http     *http.Client
	tokens   TokenSource
	validate *validator.Validate
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the instrumented default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a new API client
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of the client that authenticates with ts
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

type authMode int

const (
	authNone authMode = iota
	authOptional
	authRequired
)

type request struct {
	method string
	path   string
	query  url.Values
	body   interface{}
	auth   authMode
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil
func (c *Client) do(ctx context.Context, req request, out interface{}) error {
	ctx, span := telemetry.StartSpan(ctx, "apiclient."+req.method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("backend.path", req.path)),
	)
	defer span.End()

	err := c.send(ctx, req, out)
	telemetry.RecordError(span, err)
	return err
}

func (c *Client) send(ctx context.Context, req request, out interface{}) error {
	token, err := c.token(ctx, req.auth)
	if err != nil {
		return err
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return domain.NewAPIError(resp.StatusCode, errorMessage(raw))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := c.validate.Struct(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) token(ctx context.Context, mode authMode) (string, error) {
	if mode == authNone || c.tokens == nil {
		if mode == authRequired {
			return "", domain.ErrUnauthenticated
		}
		return "", nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil && !errors.Is(err, domain.ErrUnauthenticated) {
		return "", err
	}
	if token == "" && mode == authRequired {
		return "", domain.ErrUnauthenticated
	}
	return token, nil
}

// errorMessage pulls the server message out of an error body
func errorMessage(raw []byte) string {
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
		Errors  []string        `json:"errors"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}

	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil && s != "" {
			return s
		}
		// gateway style {"error": {"message": "..."}}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Errors) > 0 {
		return strings.Join(body.Errors, ", ")
	}
	return ""
}

// PageRequest selects one page of a list endpoint
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", fmt.Sprint(p.Page))
	}
	if p.Limit > 0 {
		q.Set("per_page", fmt.Sprint(p.Limit))
	}
	return q
}

func (p PageRequest) page(total int) domain.Page {
	return domain.Page{Page: p.Page, Limit: p.Limit, TotalCount: total}
}

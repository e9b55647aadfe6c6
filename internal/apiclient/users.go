package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// SignUpRequest is the account creation payload
type SignUpRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
	Document             string `json:"document"`
}

// Validate checks the required form fields before any network call
func (r *SignUpRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" {
		return domain.ErrEmailRequired
	}
	if r.Password == "" {
		return domain.ErrPasswordRequired
	}
	if r.Password != r.PasswordConfirmation {
		return domain.ErrPasswordMismatch
	}
	return nil
}

// SignUp creates an account
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out userWire
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/users", body: req}, &out); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	return out.toDomain(), nil
}

// SignIn exchanges credentials for a token and the user profile
func (c *Client) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return "", nil, domain.ErrEmailRequired
	}
	if password == "" {
		return "", nil, domain.ErrPasswordRequired
	}

	body := map[string]string{"email": email, "password": password}
	var out signInWire
	if err := c.do(ctx, request{method: http.MethodPost, path: "/api/v1/auth/sign_in", body: body}, &out); err != nil {
		return "", nil, fmt.Errorf("sign in: %w", err)
	}
	return out.Token, out.User.toDomain(), nil
}

// Me returns the profile of the token owner
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out userWire
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/v1/informations/me", auth: authRequired}, &out); err != nil {
		return nil, fmt.Errorf("fetch current user: %w", err)
	}
	return out.toDomain(), nil
}

// ListUsers returns one page of accounts
func (c *Client) ListUsers(ctx context.Context, p PageRequest) ([]*domain.User, domain.Page, error) {
	var out userListWire
	req := request{method: http.MethodGet, path: "/api/v1/users", query: p.values(), auth: authRequired}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, domain.Page{}, fmt.Errorf("list users: %w", err)
	}

	users := make([]*domain.User, 0, len(out.Data))
	for _, u := range out.Data {
		users = append(users, u.toDomain())
	}
	return users, p.page(out.Meta.TotalCount), nil
}

// GetUser returns one account
func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var out userWire
	req := request{method: http.MethodGet, path: fmt.Sprintf("/api/v1/users/%d", id), auth: authRequired}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return out.toDomain(), nil
}

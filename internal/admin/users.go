package admin

import (
	"context"
	"fmt"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// UsersAPI is the slice of the backend client the users listing needs
type UsersAPI interface {
	ListUsers(ctx context.Context, p apiclient.PageRequest) ([]*domain.User, domain.Page, error)
}

// LoadUsers returns one page of accounts
func LoadUsers(ctx context.Context, api UsersAPI, page, limit int) ([]*domain.User, domain.Page, error) {
	users, meta, err := api.ListUsers(ctx, apiclient.PageRequest{Page: page, Limit: limit})
	if err != nil {
		return nil, domain.Page{}, fmt.Errorf("load users: %w", err)
	}
	meta.Page = page
	meta.Limit = limit
	return users, meta, nil
}

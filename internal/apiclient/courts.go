package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// ListCourts returns one page of courts and the pagination meta
func (c *Client) ListCourts(ctx context.Context, p PageRequest) ([]*domain.Court, domain.Page, error) {
	var out courtListWire
	req := request{method: http.MethodGet, path: "/api/v1/courts", query: p.values(), auth: authOptional}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, domain.Page{}, fmt.Errorf("list courts: %w", err)
	}

	courts := make([]*domain.Court, 0, len(out.Data))
	for _, w := range out.Data {
		courts = append(courts, w.toDomain())
	}
	return courts, p.page(out.Meta.TotalCount), nil
}

// GetCourt returns one court
func (c *Client) GetCourt(ctx context.Context, id int64) (*domain.Court, error) {
	var out courtWire
	req := request{method: http.MethodGet, path: courtPath(id), auth: authOptional}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("get court %d: %w", id, err)
	}
	return out.toDomain(), nil
}

// CreateCourt creates a court (admin)
func (c *Client) CreateCourt(ctx context.Context, in domain.CourtInput) (*domain.Court, error) {
	var out courtWire
	req := request{method: http.MethodPost, path: "/api/v1/courts", body: in, auth: authRequired}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("create court: %w", err)
	}
	return out.toDomain(), nil
}

// UpdateCourt patches a court (admin)
func (c *Client) UpdateCourt(ctx context.Context, id int64, in domain.CourtInput) (*domain.Court, error) {
	var out courtWire
	req := request{method: http.MethodPatch, path: courtPath(id), body: in, auth: authRequired}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("update court %d: %w", id, err)
	}
	return out.toDomain(), nil
}

// DeleteCourt removes a court (admin)
func (c *Client) DeleteCourt(ctx context.Context, id int64) error {
	req := request{method: http.MethodDelete, path: courtPath(id), auth: authRequired}
	if err := c.do(ctx, req, nil); err != nil {
		return fmt.Errorf("delete court %d: %w", id, err)
	}
	return nil
}

func courtPath(id int64) string {
	return fmt.Sprintf("/api/v1/courts/%d", id)
}

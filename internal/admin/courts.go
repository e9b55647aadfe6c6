// Package admin holds the court and booking management views. Lists change
// only after the backend confirms a mutation.
package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
	"github.com/prohmpiriya/sportify-web/internal/view"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// inputValidator checks the same binding tags gin uses on the payloads
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
	})
	return validate
}

// CourtsAPI is the slice of the backend client the courts view needs
type CourtsAPI interface {
	ListCourts(ctx context.Context, p apiclient.PageRequest) ([]*domain.Court, domain.Page, error)
	CreateCourt(ctx context.Context, in domain.CourtInput) (*domain.Court, error)
	UpdateCourt(ctx context.Context, id int64, in domain.CourtInput) (*domain.Court, error)
	DeleteCourt(ctx context.Context, id int64) error
}

// CourtsView is the admin court table
type CourtsView struct {
	api          CourtsAPI
	courts       []*domain.Court
	page         domain.Page
	notification *view.Notification
}

// NewCourtsView creates an empty courts view
func NewCourtsView(api CourtsAPI) *CourtsView {
	return &CourtsView{api: api}
}

// Load replaces the list with one page from the backend
func (v *CourtsView) Load(ctx context.Context, page, limit int) error {
	courts, meta, err := v.api.ListCourts(ctx, apiclient.PageRequest{Page: page, Limit: limit})
	if err != nil {
		v.notification = view.FromError(err)
		return fmt.Errorf("load courts: %w", err)
	}
	meta.Page = page
	meta.Limit = limit
	v.courts = courts
	v.page = meta
	return nil
}

// Create adds a court and appends it once the backend accepted it
func (v *CourtsView) Create(ctx context.Context, in domain.CourtInput) (*domain.Court, error) {
	if err := validateCourt(in); err != nil {
		v.notification = view.FromError(err)
		return nil, err
	}

	court, err := v.api.CreateCourt(ctx, in)
	if err != nil {
		v.notification = view.FromError(err)
		return nil, err
	}

	v.courts = append(v.courts, court)
	v.page.TotalCount++
	v.notification = view.Success(fmt.Sprintf("Court %q created", court.Name))
	return court, nil
}

// Update edits a court and swaps in the backend version
func (v *CourtsView) Update(ctx context.Context, id int64, in domain.CourtInput) (*domain.Court, error) {
	if err := validateCourt(in); err != nil {
		v.notification = view.FromError(err)
		return nil, err
	}

	court, err := v.api.UpdateCourt(ctx, id, in)
	if err != nil {
		v.notification = view.FromError(err)
		return nil, err
	}

	for i, c := range v.courts {
		if c.ID == id {
			v.courts[i] = court
		}
	}
	v.notification = view.Success(fmt.Sprintf("Court %q updated", court.Name))
	return court, nil
}

// Delete removes a court and drops it from the list once confirmed
func (v *CourtsView) Delete(ctx context.Context, id int64) error {
	if err := v.api.DeleteCourt(ctx, id); err != nil {
		v.notification = view.FromError(err)
		return err
	}

	kept := v.courts[:0]
	for _, c := range v.courts {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	v.courts = kept
	if v.page.TotalCount > 0 {
		v.page.TotalCount--
	}
	v.notification = view.Success("Court deleted")
	return nil
}

// Courts returns the current list
func (v *CourtsView) Courts() []*domain.Court {
	return append([]*domain.Court(nil), v.courts...)
}

// Page returns the pagination of the loaded list
func (v *CourtsView) Page() domain.Page {
	return v.page
}

// Notification returns the outcome of the last action
func (v *CourtsView) Notification() *view.Notification {
	return v.notification
}

func validateCourt(in domain.CourtInput) error {
	if err := inputValidator().Struct(in); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidCourt, err)
	}
	return nil
}

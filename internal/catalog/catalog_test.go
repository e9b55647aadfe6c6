package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/sportify-web/internal/apiclient"
	"github.com/prohmpiriya/sportify-web/internal/domain"
)

// MockAPI is a mock implementation of API
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListCourts(ctx context.Context, p apiclient.PageRequest) ([]*domain.Court, domain.Page, error) {
	args := m.Called(ctx, p)
	courts, _ := args.Get(0).([]*domain.Court)
	return courts, args.Get(1).(domain.Page), args.Error(2)
}

func (m *MockAPI) PublicBookings(ctx context.Context) ([]*domain.Booking, error) {
	args := m.Called(ctx)
	bookings, _ := args.Get(0).([]*domain.Booking)
	return bookings, args.Error(1)
}

func courts(ids ...int64) []*domain.Court {
	out := make([]*domain.Court, 0, len(ids))
	for _, id := range ids {
		out = append(out, &domain.Court{ID: id, Name: "Court", Status: domain.CourtOpen})
	}
	return out
}

func TestLoad_TotalPages(t *testing.T) {
	api := new(MockAPI)
	api.On("ListCourts", mock.Anything, apiclient.PageRequest{Page: 1, Limit: 10}).
		Return(courts(1, 2, 3), domain.Page{Page: 1, Limit: 10, TotalCount: 25}, nil)

	res, err := Load(context.Background(), api, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalPages())
	assert.Equal(t, []int{1, 2, 3}, res.Pages())
	assert.True(t, res.HasNext())
	assert.False(t, res.HasPrev())
}

func TestLoad_ClampsPastLastPage(t *testing.T) {
	api := new(MockAPI)
	api.On("ListCourts", mock.Anything, apiclient.PageRequest{Page: 4, Limit: 10}).
		Return([]*domain.Court{}, domain.Page{Page: 4, Limit: 10, TotalCount: 25}, nil).Once()
	api.On("ListCourts", mock.Anything, apiclient.PageRequest{Page: 3, Limit: 10}).
		Return(courts(21, 22, 23, 24, 25), domain.Page{Page: 3, Limit: 10, TotalCount: 25}, nil).Once()

	res, err := Load(context.Background(), api, 4, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page.Page)
	assert.Len(t, res.Courts, 5)
	assert.False(t, res.HasNext())
	api.AssertExpectations(t)
}

func TestLoad_ClampsBelowFirstPage(t *testing.T) {
	api := new(MockAPI)
	api.On("ListCourts", mock.Anything, apiclient.PageRequest{Page: 1, Limit: DefaultLimit}).
		Return(courts(1), domain.Page{TotalCount: 1}, nil).Once()

	res, err := Load(context.Background(), api, -2, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page.Page)
	assert.Equal(t, 1, res.TotalPages())
}

func TestLoad_Error(t *testing.T) {
	api := new(MockAPI)
	api.On("ListCourts", mock.Anything, mock.Anything).Return(nil, domain.Page{}, domain.NewAPIError(500, ""))

	_, err := Load(context.Background(), api, 1, 10)
	var apiErr *domain.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestPublicGames(t *testing.T) {
	api := new(MockAPI)
	api.On("PublicBookings", mock.Anything).Return([]*domain.Booking{
		{ID: 1, CourtID: 1, Status: domain.BookingScheduled, MaxPlayers: 4, Participants: []domain.Participant{{Name: "Ana"}}},
		{ID: 2, CourtID: 9, Status: domain.BookingPending},
		{ID: 3, CourtID: 1, Status: domain.BookingCancelled},
	}, nil)

	idx := domain.NewCourtIndex([]*domain.Court{{ID: 1, Name: "Arena 1"}})
	games, err := PublicGames(context.Background(), api, idx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "Arena 1", games[0].CourtName)
	assert.Equal(t, 3, games[0].SpotsLeft)
	assert.Equal(t, "Unknown court", games[1].CourtName)
}

package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prohmpiriya/sportify-web/internal/domain"
)

func staticToken(token string) TokenSource {
	return TokenFunc(func(ctx context.Context) (string, error) {
		return token, nil
	})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	return New(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second}), &calls
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestProtectedCall_WithoutToken_NoNetwork(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	})

	_, err := client.Me(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = client.WithTokens(staticToken("")).AvailableTimes(context.Background(), 1, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestBearerTokenAttached(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/informations/me", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": 7, "email": "ana@sportify.app", "name": "Ana", "role": "admin"})
	})

	user, err := client.WithTokens(staticToken("tok-1")).Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.True(t, user.IsAdmin())
}

func TestErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{name: "error string", status: 422, body: `{"error":"slot already taken"}`, wantMessage: "slot already taken"},
		{name: "nested error", status: 400, body: `{"error":{"code":"BAD","message":"bad court"}}`, wantMessage: "bad court"},
		{name: "message field", status: 409, body: `{"message":"conflict"}`, wantMessage: "conflict"},
		{name: "errors array", status: 422, body: `{"errors":["a","b"]}`, wantMessage: "a, b"},
		{name: "not json", status: 502, body: `<html>bad gateway</html>`, wantMessage: "request failed with status 502"},
		{name: "unauthorized", status: 401, body: `{"error":"token expired"}`, wantMessage: "token expired", wantIs: domain.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, _, err := client.WithTokens(staticToken("tok")).ListCourts(context.Background(), PageRequest{Page: 1, Limit: 10})
			require.Error(t, err)

			var apiErr *domain.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// court without a name or status
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{{"id": 1}},
			"meta": map[string]interface{}{"total_count": 1},
		})
	})

	_, _, err := client.ListCourts(context.Background(), PageRequest{Page: 1, Limit: 10})
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestListCourts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": 1, "name": "Arena 1", "category": "soccer", "max_players": 10, "hourly_price": 120.5, "status": "open"},
				{"id": 2, "name": "Arena 2", "category": "volley", "max_players": 12, "hourly_price": 80, "status": "closed"},
			},
			"meta": map[string]interface{}{"total_count": 25},
		})
	})

	courts, page, err := client.ListCourts(context.Background(), PageRequest{Page: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, courts, 2)
	assert.True(t, courts[0].Bookable())
	assert.False(t, courts[1].Bookable())
	assert.Equal(t, 25, page.TotalCount)
	assert.Equal(t, 3, page.TotalPages())
}

func TestAvailableTimes_PreservesOrder(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bookings/3/available_times", r.URL.Path)
		assert.Equal(t, "2026-10-20", r.URL.Query().Get("date"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"court_id": 3,
			"date":     "2026-10-20",
			"available_times": []map[string]string{
				{"start": "2026-10-20T18:00:00Z", "end": "2026-10-20T19:00:00Z"},
				{"start": "2026-10-20T19:00:00Z", "end": "2026-10-20T20:00:00Z"},
			},
		})
	})

	avail, err := client.WithTokens(staticToken("tok")).AvailableTimes(context.Background(), 3, "2026-10-20")
	require.NoError(t, err)
	require.Len(t, avail.Windows, 2)
	assert.Equal(t, 18, avail.Windows[0].Start.Hour())
	assert.Equal(t, 19, avail.Windows[1].Start.Hour())
}

func TestCreateBooking(t *testing.T) {
	start := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(3), body["court_id"])
		assert.Equal(t, true, body["public"])
		assert.Equal(t, "2026-10-20T18:00:00Z", body["starts_on"])

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id": 42,
			"attributes": map[string]interface{}{
				"court_id":    3,
				"starts_on":   "2026-10-20T18:00:00Z",
				"ends_on":     "2026-10-20T19:00:00Z",
				"public":      true,
				"status":      "pending",
				"share_token": "abc123",
			},
		})
	})

	booking, err := client.WithTokens(staticToken("tok")).CreateBooking(context.Background(), CreateBookingRequest{StartsOn: start, CourtID: 3, Public: true})
	require.NoError(t, err)
	assert.Equal(t, int64(42), booking.ID)
	assert.Equal(t, "abc123", booking.ShareToken)
	assert.Equal(t, domain.BookingPending, booking.Status)
}

func TestCreateBooking_ValidatesLocally(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	c := client.WithTokens(staticToken("tok"))

	_, err := c.CreateBooking(context.Background(), CreateBookingRequest{CourtID: 3})
	assert.ErrorIs(t, err, domain.ErrNoTimeSelected)

	_, err = c.CreateBooking(context.Background(), CreateBookingRequest{StartsOn: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidCourt)

	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestGetBooking_InvalidToken(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bad", r.URL.Query().Get("token"))
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})

	_, err := client.GetBooking(context.Background(), 9, "bad")
	assert.ErrorIs(t, err, domain.ErrInvalidShareToken)
	assert.True(t, domain.IsNotFoundError(err))

	_, err = client.GetBooking(context.Background(), 9, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidShareToken)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestJoinBooking_ReturnsServerParticipants(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/participants", r.URL.Path)

		var body JoinRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok", body.ShareToken)
		assert.Equal(t, "Bia", body.Nickname)
		assert.Equal(t, domain.PositionForward, body.Role)

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"id": 9,
			"attributes": map[string]interface{}{
				"court_id":     1,
				"starts_on":    "2026-10-20T18:00:00Z",
				"max_players":  4,
				"participants": []map[string]string{{"name": "Ana"}, {"name": "Bia", "position": "forward"}},
			},
		})
	})

	booking, err := client.JoinBooking(context.Background(), JoinRequest{ShareToken: "tok", Nickname: "Bia", Role: domain.PositionForward})
	require.NoError(t, err)
	require.Len(t, booking.Participants, 2)
	assert.Equal(t, "Bia", booking.Participants[1].Name)
}

func TestPublicBookings_UsesFilter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("filter[public_eq]"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": []interface{}{}, "meta": map[string]int{"total_count": 0}})
	})

	bookings, err := client.PublicBookings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestSignIn(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/sign_in", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token": "jwt",
			"user":  map[string]interface{}{"id": 1, "email": "ana@sportify.app", "name": "Ana"},
		})
	})

	token, user, err := client.SignIn(context.Background(), "ana@sportify.app", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.Equal(t, domain.RoleRegular, user.Role)

	_, _, err = client.SignIn(context.Background(), "", "secret")
	assert.ErrorIs(t, err, domain.ErrEmailRequired)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	client, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := client.SignUp(context.Background(), SignUpRequest{Email: "a@b.c", Password: "x", PasswordConfirmation: "y"})
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestDeleteCourt_NoContent(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/courts/5", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, client.WithTokens(staticToken("tok")).DeleteCourt(context.Background(), 5))
}

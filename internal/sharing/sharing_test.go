package sharing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prohmpiriya/sportify-web/internal/view"
)

func TestShareLink_ExactFormat(t *testing.T) {
	assert.Equal(t, "https://sportify.app/bookings/42?token=abc123", ShareLink("https://sportify.app", 42, "abc123"))
	assert.Equal(t, "https://sportify.app/bookings/42?token=abc123", ShareLink("https://sportify.app/", 42, "abc123"))
	assert.Equal(t, "http://localhost:8080/bookings/1?token=", ShareLink("http://localhost:8080", 1, ""))
}

func TestWhatsAppLink(t *testing.T) {
	got := WhatsAppLink("Join me: https://sportify.app/bookings/1?token=a&b")
	assert.Equal(t, "https://wa.me/?text=Join%20me%3A%20https%3A%2F%2Fsportify.app%2Fbookings%2F1%3Ftoken%3Da%26b", got)
}

func TestNew(t *testing.T) {
	start := time.Date(2026, 10, 20, 18, 0, 0, 0, time.UTC)
	s := New("https://sportify.app", 42, "abc123", "Arena 1", start)

	assert.Equal(t, "https://sportify.app/bookings/42?token=abc123", s.Link)
	assert.Contains(t, s.Message, "Arena 1")
	assert.Contains(t, s.Message, "Tue 20 Oct 18:00")
	assert.Contains(t, s.Message, s.Link)
	assert.Equal(t, WhatsAppLink(s.Message), s.WhatsApp)
}

type failingClipboard struct{}

func (failingClipboard) WriteText(ctx context.Context, text string) error {
	return errors.New("permission denied")
}

func TestCopy(t *testing.T) {
	ctx := context.Background()

	n := Copy(ctx, ReportedClipboard{}, "link")
	assert.Equal(t, view.LevelSuccess, n.Level)

	n = Copy(ctx, failingClipboard{}, "link")
	assert.Equal(t, view.LevelError, n.Level)

	n = Copy(ctx, ReportedClipboard{Failure: "NotAllowedError"}, "link")
	assert.Equal(t, view.LevelError, n.Level)

	n = Copy(ctx, nil, "link")
	assert.Equal(t, view.LevelError, n.Level)
}

// Package sharing builds the links a booking owner hands out to invitees.
package sharing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/prohmpiriya/sportify-web/internal/view"
)

const whatsAppBase = "https://wa.me/?text="

// Share is what the success step of the booking flow offers
type Share struct {
	Link     string `json:"link"`
	Message  string `json:"message"`
	WhatsApp string `json:"whatsapp"`
}

// ShareLink returns origin/bookings/{id}?token={token}. The token is opaque
// and inserted as is.
func ShareLink(origin string, id int64, token string) string {
	return fmt.Sprintf("%s/bookings/%d?token=%s", strings.TrimRight(origin, "/"), id, token)
}

// DefaultMessage is the prefilled invitation text
func DefaultMessage(courtName string, start time.Time, link string) string {
	if courtName == "" {
		return fmt.Sprintf("Join my game on %s: %s", start.Format("Mon 02 Jan 15:04"), link)
	}
	return fmt.Sprintf("Join my game at %s on %s: %s", courtName, start.Format("Mon 02 Jan 15:04"), link)
}

// WhatsAppLink returns a wa.me deep link prefilled with message
func WhatsAppLink(message string) string {
	return whatsAppBase + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// New assembles the share options for a created booking
func New(origin string, id int64, token, courtName string, start time.Time) *Share {
	link := ShareLink(origin, id, token)
	msg := DefaultMessage(courtName, start, link)
	return &Share{
		Link:     link,
		Message:  msg,
		WhatsApp: WhatsAppLink(msg),
	}
}

// Clipboard receives copied text
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
}

// Copy writes link to the clipboard. Failure never aborts the flow, it only
// yields an error notification.
func Copy(ctx context.Context, cb Clipboard, link string) *view.Notification {
	if cb == nil {
		return &view.Notification{Level: view.LevelError, Message: ErrClipboardUnavailable.Error()}
	}
	if err := cb.WriteText(ctx, link); err != nil {
		return &view.Notification{Level: view.LevelError, Message: "Could not copy the link, copy it manually."}
	}
	return view.Success("Link copied!")
}

// ReportedClipboard replays the outcome of a copy performed by the browser
type ReportedClipboard struct {
	Failure string
}

func (r ReportedClipboard) WriteText(ctx context.Context, text string) error {
	if r.Failure != "" {
		return fmt.Errorf("clipboard: %s", r.Failure)
	}
	return nil
}

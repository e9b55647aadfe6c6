package view

import "github.com/prohmpiriya/sportify-web/internal/domain"

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a non-blocking message shown to the user
type Notification struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Success builds a success notification
func Success(msg string) *Notification {
	return &Notification{Level: LevelSuccess, Message: msg}
}

// Info builds an informational notification
func Info(msg string) *Notification {
	return &Notification{Level: LevelInfo, Message: msg}
}

// FromError turns err into an error notification, nil for a nil error
func FromError(err error) *Notification {
	if err == nil {
		return nil
	}
	return &Notification{Level: LevelError, Message: domain.UserMessage(err)}
}

package notification

import (
	"errors"
	"time"
)

// Level classifies a one-shot outcome message.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a one-shot, non-blocking outcome message shown to a client
// on their next rendered screen. Pending notifications for a client coexist
// until consumed; consuming surfaces all of them at once, so a newer message
// never cuts short an older one's visibility.
type Notification struct {
	ID        string
	ClientID  string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Validate checks the fields every sink write must carry.
// POST: returns error if ClientID or Message is empty or Level is unknown
func (n Notification) Validate() error {
	if n.ClientID == "" {
		return errors.New("client id is required")
	}
	if n.Message == "" {
		return errors.New("message is required")
	}
	if n.Level != LevelSuccess && n.Level != LevelError {
		return errors.New("unknown notification level")
	}
	return nil
}

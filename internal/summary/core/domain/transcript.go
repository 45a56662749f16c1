package domain

import (
	"strconv"
	"time"
)

// ChatMessage is the summarizer's view of one ingested message.
type ChatMessage struct {
	UserID   int64
	Username string
	Text     string
	SentAt   time.Time
}

// Line renders the message as one transcript line.
func (m ChatMessage) Line() string {
	name := m.Username
	if name == "" {
		name = "user " + strconv.FormatInt(m.UserID, 10)
	}
	return name + ": " + m.Text
}

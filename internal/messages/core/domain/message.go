package domain

import "time"

// Message is one chat message as ingested. Immutable once written.
type Message struct {
	ID       string
	ChatID   int64
	UserID   int64
	Username string
	Text     string
	SentAt   time.Time
}

// Day returns the UTC day bucket the message belongs to.
func (m Message) Day() string {
	return m.SentAt.UTC().Format("2006-01-02")
}

package model

import (
	"strings"
	"time"
)

// SystemSender is the sender name used for messages generated by the
// service itself, such as escalation notices.
const SystemSender = "System"

// IsSystemName reports whether name collides with SystemSender, ignoring
// case and surrounding space.  Such names are reserved.
func IsSystemName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), SystemSender)
}

// Message is one immutable chat line stored in the `messages` table.
// Sender and Receiver are account usernames (or SystemSender) and are not
// required to belong to a logged-in account.
//
// Fields:
//
//	ID       – insertion-ordered primary key; breaks timestamp ties.
//	Sender   – author of the message.
//	Receiver – addressee of the message.
//	Body     – non-blank text.
//	SentAt   – timestamp assigned when the message was appended.
type Message struct {
	ID       uint64    `json:"id"`       // messages.id
	Sender   string    `json:"sender"`   // messages.sender
	Receiver string    `json:"receiver"` // messages.receiver
	Body     string    `json:"body"`     // messages.body
	SentAt   time.Time `json:"sent_at"`  // messages.sent_at
}

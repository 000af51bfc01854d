package notification

import "time"

type Type string

const (
	TypeClassRequestSent    Type = "ClassRequestSent"
	TypeClassRequestHandled Type = "ClassRequestHandled"
)

type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

// Notification is owned by its recipient; the only mutation allowed is
// the recipient flipping Status to read.
type Notification struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Type      Type      `json:"type"`
	Message   string    `json:"message"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewNotification contains information needed to record a new Notification.
type NewNotification struct {
	User    string
	Type    Type
	Message string
}

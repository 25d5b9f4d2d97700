package models

import "time"

// NotificationChannel selects the delivery transport.
type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "EMAIL"
	ChannelSMS   NotificationChannel = "SMS"
)

// Audience selectors accepted by the broadcast endpoint. Any other value is
// first tried as a literal user id; unresolvable selectors yield an empty
// audience, not an error.
const (
	AudienceAll      = "all"
	AudienceDonors   = "donors"
	AudienceEligible = "eligible"
)

// Notification is a stored per-user message.
type Notification struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"userId"`
	Channel   NotificationChannel `db:"channel" json:"channel"`
	Title     string              `db:"title" json:"title"`
	Message   string              `db:"message" json:"message"`
	CreatedAt time.Time           `db:"created_at" json:"createdAt"`
	ReadAt    *time.Time          `db:"read_at" json:"readAt,omitempty"`
}

// DispatchOutcome reports per-recipient delivery results. A failed recipient
// never aborts the batch.
type DispatchOutcome struct {
	UserID    string `json:"userId"`
	Channel   string `json:"channel"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
}

package domain

import "time"

// NotificationCap is the maximum number of notifications kept per user.
// Older entries are discarded when new ones arrive.
const NotificationCap = 50

// Notification is a single entry in a user's capped notification feed.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

package entity

import "time"

// Subscription is one client's push-notification endpoint. A subscription
// that repeatedly fails delivery is pruned rather than retried forever.
type Subscription struct {
	ID        int64
	UID       string
	Endpoint  string
	Auth      string
	P256DH    string
	CreatedAt time.Time
}

package entity

import "time"

// Subscription is a directed edge meaning "subscriber follows channel".
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

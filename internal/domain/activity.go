package domain

import "time"

// ActivityType classifies dashboard feed entries.
type ActivityType string

const (
	ActivityTypeUserRegistered ActivityType = "user_registered"
	ActivityTypeProductAdded   ActivityType = "product_added"
	ActivityTypeLowStock       ActivityType = "low_stock"
)

// Activity is a synthetic dashboard feed entry. It is derived from other
// entities per request and never persisted.
type Activity struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	Message   string       `json:"message"`
	Timestamp time.Time    `json:"timestamp"`
	Status    string       `json:"status"`
}

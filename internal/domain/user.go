package domain

import "time"

// User holds the delivery targets for push notifications. FCMTokens is a
// set: tokens are added when a device registers and removed only when the
// push transport proves them permanently dead.
type User struct {
	ID        string    `bson:"_id,omitempty"`
	Name      string    `bson:"name,omitempty"`
	FCMTokens []string  `bson:"fcm_tokens,omitempty"`
	CreatedAt time.Time `bson:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty"`
}

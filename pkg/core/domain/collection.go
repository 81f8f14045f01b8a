package domain

import "time"

// Collection is the set of variant ids a user has marked as owned.
type Collection struct {
	UserID     string    `json:"user_id" bson:"user_id"`
	VariantIDs []string  `json:"variant_ids" bson:"variant_ids"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

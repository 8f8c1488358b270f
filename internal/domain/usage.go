package domain

import "time"

// FreeGenerationLimit is the number of generations permitted before a
// subscription is required.
const FreeGenerationLimit = 12

// UsageRecord tracks how many generations a free-tier user has consumed.
// The counter is monotonic: it is created lazily on first use and only
// ever increments while the user stays on the free plan.
type UsageRecord struct {
	UserID    string    `json:"user_id"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entitlement is the computed permission snapshot for a user
type Entitlement struct {
	UserID    string `json:"user_id"`
	Count     int    `json:"count"`
	FreeLimit int    `json:"free_limit"`
	IsPro     bool   `json:"is_pro"`
	Allowed   bool   `json:"allowed"`
}

package models

import "time"

// LoginAttempt is one row of the append-only admin login audit trail.
// Rows are never updated; the rate limiter derives its window from them.
type LoginAttempt struct {
	ID        string    `db:"id" json:"id"`
	IPAddress string    `db:"ip_address" json:"ipAddress"`
	Success   bool      `db:"success" json:"success"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

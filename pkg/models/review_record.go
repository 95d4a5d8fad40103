package models

import "time"

// ReviewRecord is the per-(user, item) scheduling state. Exactly one
// record exists per pair; it is created when the user collects the item
// and mutated only by the scheduling engine.
type ReviewRecord struct {
	ID         int64      `json:"id" db:"id"`
	UserID     int64      `json:"user_id" db:"user_id"`
	ItemID     int64      `json:"item_id" db:"item_id"`
	ListID     *int64     `json:"list_id" db:"list_id"` // nil once the owning list is deleted
	Stability  float64    `json:"stability" db:"stability"`
	Difficulty float64    `json:"difficulty" db:"difficulty"`
	Due        time.Time  `json:"due" db:"due"`
	Lapses     int        `json:"lapses" db:"lapses"`
	State      State      `json:"state" db:"state"`
	LastReview *time.Time `json:"last_review" db:"last_review"` // nil before the first rating
	Version    int64      `json:"-" db:"version"`               // optimistic concurrency guard
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

// IsDue reports whether the record is eligible for review at t.
func (r *ReviewRecord) IsDue(t time.Time) bool {
	return !r.Due.After(t)
}

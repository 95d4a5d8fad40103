package models

// ReviewStats aggregates a user's review records by state.
type ReviewStats struct {
	Total      int `json:"total" db:"total"`
	New        int `json:"new" db:"new"`
	Learning   int `json:"learning" db:"learning"`
	Review     int `json:"review" db:"review"`
	Relearning int `json:"relearning" db:"relearning"`
	DueToday   int `json:"due_today" db:"due_today"` // records with due <= now
}

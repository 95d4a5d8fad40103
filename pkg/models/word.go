package models

import "time"

// Word is a vocabulary item belonging to a word list.
type Word struct {
	ID         int64     `json:"id" db:"id"`
	ListID     *int64    `json:"list_id" db:"list_id"` // nil once the owning list is deleted
	Position   int       `json:"position" db:"position"` // insertion order within the list
	Term       string    `json:"term" db:"term"`
	Definition string    `json:"definition" db:"definition"`
	Phonetic   string    `json:"phonetic" db:"phonetic"`
	Hint       string    `json:"hint" db:"hint"` // mnemonic shown after a wrong test attempt
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

package models

import "time"

// Version is an immutable full-document snapshot. IDs are monotonic
// unix-millisecond timestamps; the ledger keeps them newest-first.
type Version struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
	WordCount int       `json:"word_count"`
}

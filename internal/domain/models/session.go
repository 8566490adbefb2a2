package models

import (
	"time"

	"github.com/google/uuid"
)

// Session is the explicit owner of all editing state: the live document,
// the anchored suggestion set, the bounded version ledger, the chat log,
// and the preferences. Components operate on a session handle rather than
// ambient state.
type Session struct {
	ID          uuid.UUID     `json:"id"`
	Content     string        `json:"content"`
	Suggestions []*Suggestion `json:"suggestions"`
	Versions    []*Version    `json:"versions"`
	Chat        []ChatMessage `json:"chat"`
	Prefs       Preferences   `json:"preferences"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewSession creates an empty session with default preferences.
func NewSession(content string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:          uuid.New(),
		Content:     content,
		Suggestions: []*Suggestion{},
		Versions:    []*Version{},
		Chat:        []ChatMessage{},
		Prefs:       DefaultPreferences(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

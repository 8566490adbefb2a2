package config

import "time"

const (
	// MaxVersions is the number of document snapshots the version ledger
	// retains per session. Saving one more evicts the oldest.
	MaxVersions = 5

	// MaxChatHistory is the number of chat messages persisted per session.
	// The in-memory list is unbounded for the life of the session; only
	// the most recent MaxChatHistory entries are written to storage.
	MaxChatHistory = 50

	// SegmentWordBudget is the maximum words per segment submitted to the
	// text service during a whole-document transform. Documents at or
	// under the budget go out as a single request.
	SegmentWordBudget = 1500

	// MaxDocumentLength is the maximum document size in bytes accepted on
	// a content update. Bounds request bodies and prompt sizes.
	MaxDocumentLength = 2 << 20

	// MaxVersionLabelLength bounds user-supplied version labels.
	MaxVersionLabelLength = 120

	// MaxChatMessageLength bounds a single chat message.
	MaxChatMessageLength = 8192

	// DefaultSuggestionTarget is the suggestion count requested from the
	// model when the caller does not ask for a specific limit.
	DefaultSuggestionTarget = 10

	// MaxSuggestionTarget caps the per-request suggestion count.
	MaxSuggestionTarget = 50
)

// Debounce intervals for the persistence streams. Each stream holds one
// pending write; a new value replaces it and resets the timer, so a burst
// of edits collapses to a single storage write.
const (
	ContentSaveDelay     = 2000 * time.Millisecond
	ChatSaveDelay        = 1000 * time.Millisecond
	PreferencesSaveDelay = 500 * time.Millisecond
)

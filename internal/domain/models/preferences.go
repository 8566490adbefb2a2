package models

// Preferences holds per-session editor settings. The whole value is
// overwritten on each change.
type Preferences struct {
	ActiveCategories []Category `json:"active_categories"`
}

// DefaultPreferences enables every category.
func DefaultPreferences() Preferences {
	return Preferences{ActiveCategories: AllCategories()}
}

package domain

const AvailabilityUnavailable = "unavailable"

// RetrievedInfo is the provider's descriptive record for a source URL.
// A collection (playlist) carries its children in Entries; a single item
// has no entries. Children keep a stable original locator so they can be
// fetched individually later.
type RetrievedInfo struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	OriginalURL  string          `json:"original_url"`
	Availability string          `json:"availability"`
	Entries      []RetrievedInfo `json:"entries,omitempty"`
}

// IsCollection reports whether the record describes a playlist-like group.
func (i *RetrievedInfo) IsCollection() bool {
	return len(i.Entries) > 0
}

// Locator returns the URL to hand to the provider when fetching this item.
func (i *RetrievedInfo) Locator() string {
	if i.OriginalURL != "" {
		return i.OriginalURL
	}
	return i.ID
}

// DisplayTitle never returns an empty string.
func (i *RetrievedInfo) DisplayTitle() string {
	if i.Title == "" {
		return "Unknown Video"
	}
	return i.Title
}

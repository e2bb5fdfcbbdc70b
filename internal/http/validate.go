package http

import (
	"regexp"
	"strings"
)

var sourceURLPattern = regexp.MustCompile(
	`(https?://)?(www\.)?(youtube|youtu|youtube-nocookie)\.(com|be)/(playlist\?list=|watch\?v=|embed/|v/|.+\?v=)?([^&=%?]{11,})`)

// IsValidSourceURL reports whether url looks like a submittable source URL.
func IsValidSourceURL(url string) bool {
	loc := sourceURLPattern.FindStringIndex(url)
	return loc != nil && loc[0] == 0
}

// IsPlaylistURL reports whether url points at a collection rather than a
// single item.
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, "playlist?list=") || strings.Contains(url, "youtu.be/playlist?")
}

package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidSourceURL(t *testing.T) {
	tests := []struct {
		url   string
		valid bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"www.youtube.com/watch?v=dQw4w9WgXcQ", true},
		{"https://www.youtube.com/playlist?list=PLabc123def456", true},
		{"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", true},
		{"see https://youtu.be/dQw4w9WgXcQ", false},
		{"https://vimeo.com/123456", false},
		{"not a url", false},
		{"", false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.valid, IsValidSourceURL(tc.url), tc.url)
	}
}

func TestIsPlaylistURL(t *testing.T) {
	assert.True(t, IsPlaylistURL("https://www.youtube.com/playlist?list=PLabc123def456"))
	assert.True(t, IsPlaylistURL("https://youtu.be/playlist?list=PLabc123def456"))
	assert.False(t, IsPlaylistURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))
	assert.False(t, IsPlaylistURL("https://youtu.be/dQw4w9WgXcQ"))
}

package media_test

import (
	"github.com/myrjola/casefile/internal/media"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
		wantOK bool
	}{
		{"watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"watch with params", "https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", true},
		{"short link", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ", true},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"nocookie embed", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"shorts", "https://youtube.com/shorts/abcdefghijk", "abcdefghijk", true},
		{"live", "https://www.youtube.com/live/abc_DEF-123", "abc_DEF-123", true},
		{"v path", "https://www.youtube.com/v/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"channel", "https://www.youtube.com/@somechannel", "", false},
		{"other host", "https://vimeo.com/123456789", "", false},
		{"too short", "https://youtu.be/abc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := media.ExtractVideoID(tt.url)
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantID, id)
		})
	}
}

func TestIsWrapperPage(t *testing.T) {
	require.True(t, media.IsWrapperPage("https://en.wikipedia.org/wiki/File:Courthouse.jpg"))
	require.True(t, media.IsWrapperPage("https://commons.wikimedia.org/wiki/Image:Map.png"))
	require.True(t, media.IsWrapperPage("https://EN.WIKIPEDIA.ORG/wiki/file:lower.jpg"))
	require.False(t, media.IsWrapperPage("https://upload.wikimedia.org/wikipedia/commons/a/a9/Example.jpg"))
	require.False(t, media.IsWrapperPage("https://en.wikipedia.org/wiki/Zodiac_Killer"))
}

func TestIsVideoID(t *testing.T) {
	require.True(t, media.IsVideoID("dQw4w9WgXcQ"))
	require.True(t, media.IsVideoID("abc_DEF-123"))
	require.False(t, media.IsVideoID("short"))
	require.False(t, media.IsVideoID("dQw4w9WgXcQ1"))
	require.False(t, media.IsVideoID("dQw4w9WgX/Q"))
	require.False(t, media.IsVideoID(""))
}

func TestLinks(t *testing.T) {
	require.Equal(t, "https://img.youtube.com/vi/dQw4w9WgXcQ/mqdefault.jpg", media.ThumbnailURL("dQw4w9WgXcQ"))
	require.Equal(t, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", media.EmbedURL("dQw4w9WgXcQ"))
	require.Equal(t, "https://www.google.com/search?tbm=isch&q=crime+scene+photo", media.ImageSearchURL(" crime scene photo "))
	require.Equal(t, "https://www.youtube.com/results?search_query=court+%26+trial", media.VideoSearchURL("court & trial"))

	require.True(t, media.IsProbeable("https://example.com/a.png"))
	require.False(t, media.IsProbeable("ftp://example.com/a.png"))
	require.False(t, media.IsProbeable("/relative.png"))
	require.False(t, media.IsProbeable("data:image/png;base64,AAAA"))
}

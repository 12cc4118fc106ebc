package media

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// videoIDPattern covers youtu.be short links and the youtube.com watch, embed, /v/, /e/, /shorts/, /live/ and
	// legacy user-page shapes.
	videoIDPattern = regexp.MustCompile(
		`(?:youtube(?:-nocookie)?\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?|shorts|live)/|.*[?&]v=)|youtu\.be/)([A-Za-z0-9_-]{11})`)
	wrapperPagePattern = regexp.MustCompile(`(?i)wiki(?:pedia|media)\.org/wiki/(?:File|Image):`)
	videoIDOnly        = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// ExtractVideoID returns the 11-character YouTube video ID in rawURL.
func ExtractVideoID(rawURL string) (string, bool) {
	m := videoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// IsVideoID reports whether id has the shape of a YouTube video ID.
func IsVideoID(id string) bool {
	return videoIDOnly.MatchString(id)
}

// IsWrapperPage reports whether rawURL is an encyclopedia file-description page, an HTML page that merely wraps the
// actual image file.
func IsWrapperPage(rawURL string) bool {
	return wrapperPagePattern.MatchString(rawURL)
}

// ThumbnailURL is the medium-quality thumbnail of a video. YouTube serves a 120 px wide placeholder for videos that
// are removed or private.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/mqdefault.jpg"
}

// EmbedURL is the privacy-enhanced embed player URL.
func EmbedURL(videoID string) string {
	return "https://www.youtube-nocookie.com/embed/" + videoID
}

// ImageSearchURL is a fallback search for an image described by query.
func ImageSearchURL(query string) string {
	return "https://www.google.com/search?tbm=isch&q=" + url.QueryEscape(strings.TrimSpace(query))
}

// VideoSearchURL is a fallback search for a video described by query.
func VideoSearchURL(query string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(strings.TrimSpace(query))
}

// IsProbeable reports whether rawURL is an absolute http(s) URL.
func IsProbeable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

package media

import (
	"context"
	"log/slog"
)

// State of a media reference. Loading is the initial state, the other two are terminal.
type State string

const (
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateError   State = "error"
)

// placeholderMaxWidth is the width of the thumbnail YouTube serves for unavailable videos.
const placeholderMaxWidth = 120

// ImageResult is the terminal state of an image reference.
type ImageResult struct {
	State   State
	Src     string
	Caption string
	// SourcePage links to the wrapper page when the reference is not a direct image.
	SourcePage string
	// SearchURL seeds a fallback search from the caption.
	SearchURL string
}

// VideoResult is the terminal state of a video reference.
type VideoResult struct {
	State     State
	VideoID   string
	Title     string
	EmbedURL  string
	SearchURL string
}

// Validator resolves media references to their terminal state.
type Validator struct {
	prober Prober
	logger *slog.Logger
}

func NewValidator(prober Prober, logger *slog.Logger) *Validator {
	return &Validator{prober: prober, logger: logger}
}

// ImagePending is the initial state of an image reference. Wrapper pages are resolved immediately because they never
// render as images.
func ImagePending(src, caption string) ImageResult {
	if IsWrapperPage(src) {
		return ImageResult{State: StateError, Src: src, Caption: caption, SourcePage: src, SearchURL: ImageSearchURL(caption)}
	}
	return ImageResult{State: StateLoading, Src: src, Caption: caption, SourcePage: "", SearchURL: ""}
}

// Image probes src unless it is a wrapper page.
func (v *Validator) Image(ctx context.Context, src, caption string) ImageResult {
	result := ImagePending(src, caption)
	if result.State != StateLoading {
		return result
	}
	if probe := v.prober.Probe(ctx, src); probe.OK {
		result.State = StateLoaded
		return result
	}
	v.logger.LogAttrs(ctx, slog.LevelInfo, "image unavailable", slog.String("src", src))
	result.State = StateError
	query := caption
	if query == "" {
		query = src
	}
	result.SearchURL = ImageSearchURL(query)
	return result
}

// Video probes the thumbnail of videoID. A failed probe or a placeholder thumbnail means the video is restricted.
func (v *Validator) Video(ctx context.Context, videoID, title string) VideoResult {
	probe := v.prober.Probe(ctx, ThumbnailURL(videoID))
	if probe.OK && probe.Width > placeholderMaxWidth {
		return VideoResult{State: StateLoaded, VideoID: videoID, Title: title, EmbedURL: EmbedURL(videoID), SearchURL: ""}
	}
	v.logger.LogAttrs(ctx, slog.LevelInfo, "video restricted",
		slog.String("video_id", videoID), slog.Int("thumbnail_width", probe.Width))
	query := title
	if query == "" {
		query = videoID
	}
	return VideoResult{State: StateError, VideoID: videoID, Title: title, EmbedURL: "", SearchURL: VideoSearchURL(query)}
}

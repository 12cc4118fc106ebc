package render_test

import (
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/casefile/internal/media"
	"github.com/myrjola/casefile/internal/render"
	"github.com/myrjola/casefile/ui"
	"github.com/stretchr/testify/require"
	"net/url"
	"strings"
	"testing"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(ui.Files)
	require.NoError(t, err)
	return r
}

func parse(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestRenderer_Markdown(t *testing.T) {
	r := newRenderer(t)

	t.Run("image becomes loading placeholder", func(t *testing.T) {
		out, err := r.Markdown("Scene\n\n![The courthouse](https://example.com/courthouse.jpg)\n*Courthouse in 1969*")
		require.NoError(t, err)
		doc := parse(t, string(out))

		require.Equal(t, 0, doc.Find("img").Length(), "no image before validation")
		placeholder := doc.Find(".media-loading")
		require.Equal(t, 1, placeholder.Length())
		hxGet, ok := placeholder.Attr("hx-get")
		require.True(t, ok)
		u, err := url.Parse(hxGet)
		require.NoError(t, err)
		require.Equal(t, render.ImagePath, u.Path)
		require.Equal(t, "https://example.com/courthouse.jpg", u.Query().Get("src"))
		require.Equal(t, "The courthouse", u.Query().Get("caption"))
		require.Equal(t, "load", placeholder.AttrOr("hx-trigger", ""))
		require.Equal(t, "outerHTML", placeholder.AttrOr("hx-swap", ""))
		require.Contains(t, doc.Find("em").Text(), "Courthouse in 1969")
	})

	t.Run("wrapper page renders source card without probe", func(t *testing.T) {
		out, err := r.Markdown("![Map](https://commons.wikimedia.org/wiki/File:Map.png)")
		require.NoError(t, err)
		doc := parse(t, string(out))

		require.Equal(t, 0, doc.Find("[hx-get]").Length())
		require.Equal(t, 0, doc.Find("img").Length())
		link := doc.Find(".media-card a")
		require.Equal(t, "https://commons.wikimedia.org/wiki/File:Map.png", link.AttrOr("href", ""))
		require.Equal(t, "View source page", link.Text())
	})

	t.Run("video link gets placeholder after it", func(t *testing.T) {
		out, err := r.Markdown("Watch [the interview](https://youtu.be/dQw4w9WgXcQ) first.")
		require.NoError(t, err)
		doc := parse(t, string(out))

		link := doc.Find("a")
		require.Equal(t, 1, link.Length())
		require.Equal(t, "_blank", link.AttrOr("target", ""))
		require.Equal(t, "noopener noreferrer", link.AttrOr("rel", ""))

		placeholder := link.Next()
		require.True(t, placeholder.HasClass("media-loading"))
		u, err := url.Parse(placeholder.AttrOr("hx-get", ""))
		require.NoError(t, err)
		require.Equal(t, render.VideoPath, u.Path)
		require.Equal(t, "dQw4w9WgXcQ", u.Query().Get("id"))
		require.Equal(t, "the interview", u.Query().Get("title"))
		require.Equal(t, 0, doc.Find("iframe").Length())
	})

	t.Run("plain link stays plain", func(t *testing.T) {
		out, err := r.Markdown("See [the report](https://example.com/report).")
		require.NoError(t, err)
		doc := parse(t, string(out))
		require.Equal(t, 0, doc.Find(".media").Length())
		require.Equal(t, "noopener noreferrer", doc.Find("a").AttrOr("rel", ""))
	})

	t.Run("raw html and script links are dropped", func(t *testing.T) {
		out, err := r.Markdown("<script>alert(1)</script>\n\n[click](javascript:alert(1))")
		require.NoError(t, err)
		doc := parse(t, string(out))
		require.Equal(t, 0, doc.Find("script").Length())
		require.NotContains(t, doc.Find("a").AttrOr("href", ""), "javascript")
	})

	t.Run("tables render", func(t *testing.T) {
		out, err := r.Markdown("| Date | Event |\n|---|---|\n| 1969 | Letter |")
		require.NoError(t, err)
		require.Equal(t, 1, parse(t, string(out)).Find("table").Length())
	})
}

func TestRenderer_ImageFragment(t *testing.T) {
	r := newRenderer(t)
	tests := []struct {
		name       string
		result     media.ImageResult
		wantImg    bool
		wantLinkTo string
	}{
		{
			name:    "loaded",
			result:  media.ImageResult{State: media.StateLoaded, Src: "https://example.com/a.jpg", Caption: "A"},
			wantImg: true,
		},
		{
			name: "error with search",
			result: media.ImageResult{State: media.StateError, Src: "https://example.com/a.jpg", Caption: "A",
				SearchURL: media.ImageSearchURL("A")},
			wantLinkTo: media.ImageSearchURL("A"),
		},
		{
			name: "wrapper page",
			result: media.ImageResult{State: media.StateError, Src: "https://en.wikipedia.org/wiki/File:A.jpg",
				SourcePage: "https://en.wikipedia.org/wiki/File:A.jpg", SearchURL: media.ImageSearchURL("A")},
			wantLinkTo: "https://en.wikipedia.org/wiki/File:A.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			require.NoError(t, r.ImageFragment(&sb, tt.result))
			doc := parse(t, sb.String())
			if tt.wantImg {
				require.Equal(t, tt.result.Src, doc.Find("img").AttrOr("src", ""))
				return
			}
			require.Equal(t, 0, doc.Find("img").Length())
			require.Equal(t, tt.wantLinkTo, doc.Find("a").AttrOr("href", ""))
		})
	}
}

func TestRenderer_VideoFragment(t *testing.T) {
	r := newRenderer(t)

	var sb strings.Builder
	require.NoError(t, r.VideoFragment(&sb, media.VideoResult{
		State: media.StateLoaded, VideoID: "dQw4w9WgXcQ", Title: "Interview", EmbedURL: media.EmbedURL("dQw4w9WgXcQ"),
	}))
	require.Equal(t, media.EmbedURL("dQw4w9WgXcQ"), parse(t, sb.String()).Find("iframe").AttrOr("src", ""))

	sb.Reset()
	require.NoError(t, r.VideoFragment(&sb, media.VideoResult{
		State: media.StateError, VideoID: "dQw4w9WgXcQ", Title: "Interview", SearchURL: media.VideoSearchURL("Interview"),
	}))
	doc := parse(t, sb.String())
	require.Equal(t, 0, doc.Find("iframe").Length())
	require.Contains(t, doc.Text(), "Video restricted")
	require.Equal(t, media.VideoSearchURL("Interview"), doc.Find("a").AttrOr("href", ""))
}

package media_test

import (
	"bytes"
	"github.com/fatih/color"
	climedia "github.com/myrjola/casefile/cmd/cli/media"
	"github.com/myrjola/casefile/internal/media"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPrint(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name  string
		print func(*bytes.Buffer)
		want  string
	}{
		{
			name: "loaded image",
			print: func(b *bytes.Buffer) {
				climedia.PrintImage(b, media.ImageResult{State: media.StateLoaded, Src: "https://example.com/a.jpg"})
			},
			want: "✔ image loads: https://example.com/a.jpg\n",
		},
		{
			name: "wrapper page",
			print: func(b *bytes.Buffer) {
				climedia.PrintImage(b, media.ImagePending("https://en.wikipedia.org/wiki/File:A.jpg", "A"))
			},
			want: "✘ wrapper page, not an image: https://en.wikipedia.org/wiki/File:A.jpg\n" +
				"  search: " + media.ImageSearchURL("A") + "\n",
		},
		{
			name: "restricted video",
			print: func(b *bytes.Buffer) {
				climedia.PrintVideo(b, media.VideoResult{State: media.StateError, VideoID: "dQw4w9WgXcQ",
					SearchURL: media.VideoSearchURL("talk")})
			},
			want: "✘ video restricted: dQw4w9WgXcQ\n  search: " + media.VideoSearchURL("talk") + "\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.print(&buf)
			require.Equal(t, tt.want, buf.String())
		})
	}
}

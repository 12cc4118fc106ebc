package main

import (
	"context"
	"github.com/stretchr/testify/require"
	"net/http"
	neturl "net/url"
	"testing"
)

func TestMediaImage(t *testing.T) {
	server, api := startTestServer(t, nil)

	tests := []struct {
		name   string
		src    string
		status int
		want   []string
	}{
		{"loaded", api.URL + "/images/photo.png", http.StatusOK,
			[]string{`<img src="` + api.URL + `/images/photo.png"`, `alt="Harbour at dawn"`}},
		{"broken", api.URL + "/images/missing.png", http.StatusOK,
			[]string{"Image unavailable: Harbour at dawn", "Search for images", "tbm=isch"}},
		{"wrapper page", "https://commons.wikimedia.org/wiki/File:Harbour.jpg", http.StatusOK,
			[]string{"View source page", `href="https://commons.wikimedia.org/wiki/File:Harbour.jpg"`}},
		{"missing src", "", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := neturl.Values{"caption": {"Harbour at dawn"}}
			if tt.src != "" {
				query.Set("src", tt.src)
			}
			status, body := hxGet(t, server, "/media/image?"+query.Encode())
			require.Equal(t, tt.status, status)
			for _, want := range tt.want {
				require.Contains(t, body, want)
			}
		})
	}

	resp, err := server.Client().Get(context.Background(),
		"/media/image?src="+neturl.QueryEscape(api.URL+"/images/photo.png"))
	require.NoError(t, err)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	requireStatus(t, http.StatusOK, resp)
}

func TestMediaVideo_invalidID(t *testing.T) {
	server, _ := startTestServer(t, nil)

	for _, id := range []string{"", "short", "dQw4w9WgXcQ/../x"} {
		status, _ := hxGet(t, server, "/media/video?id="+neturl.QueryEscape(id))
		require.Equal(t, http.StatusBadRequest, status, id)
	}
}

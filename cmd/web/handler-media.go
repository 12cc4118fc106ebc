package main

import (
	"bytes"
	"github.com/myrjola/casefile/internal/media"
	"net/http"
	"strings"
)

func writeFragment(w http.ResponseWriter, buf *bytes.Buffer) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Media is re-probed on every render.
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (app *application) mediaImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	src := strings.TrimSpace(query.Get("src"))
	if src == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	result := app.validator.Image(r.Context(), src, strings.TrimSpace(query.Get("caption")))

	var buf bytes.Buffer
	if err := app.renderer.ImageFragment(&buf, result); err != nil {
		app.serverError(w, r, err)
		return
	}
	writeFragment(w, &buf)
}

func (app *application) mediaVideo(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	id := query.Get("id")
	if !media.IsVideoID(id) {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}
	result := app.validator.Video(r.Context(), id, strings.TrimSpace(query.Get("title")))

	var buf bytes.Buffer
	if err := app.renderer.VideoFragment(&buf, result); err != nil {
		app.serverError(w, r, err)
		return
	}
	writeFragment(w, &buf)
}

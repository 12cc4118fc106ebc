package main

import (
	"github.com/justinas/alice"
	"github.com/myrjola/casefile/internal/render"
	"github.com/myrjola/casefile/ui"
	"io/fs"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	static, err := fs.Sub(ui.Files, "static")
	if err != nil {
		panic(err) // static is embedded at compile time
	}
	mux.Handle("GET /static/", cacheHeaders(http.StripPrefix("/static", http.FileServerFS(static))))

	session := alice.New(app.limitBody, app.sessionManager.LoadAndSave, noSurf, app.loadTheme, commonContext)
	page := session.Append(app.timeout)
	fragment := alice.New(app.timeout)
	stream := alice.New(app.serverSentEventMiddleware)

	mux.Handle("GET /{$}", page.ThenFunc(app.home))
	mux.Handle("POST /chat", page.ThenFunc(app.chat))
	mux.Handle("POST /chat/new", page.ThenFunc(app.newChat))
	mux.Handle("GET /sessions/{id}", page.ThenFunc(app.openSession))
	mux.Handle("POST /sessions/{id}/delete", page.ThenFunc(app.deleteSession))

	mux.Handle("GET /script", page.ThenFunc(app.scriptForm))
	mux.Handle("POST /script", page.ThenFunc(app.compileScript))
	mux.Handle("POST /scripts", page.ThenFunc(app.saveScript))
	mux.Handle("GET /scripts/{id}", page.ThenFunc(app.savedScript))
	mux.Handle("POST /scripts/{id}/delete", page.ThenFunc(app.deleteScript))

	mux.Handle("GET /footage", page.ThenFunc(app.footage))

	mux.Handle("GET /transcribe", page.ThenFunc(app.transcribePage))
	mux.Handle("POST /transcribe", page.ThenFunc(app.transcribe))
	mux.Handle("POST /transcribe/local", page.ThenFunc(app.transcribeLocal))
	mux.Handle("GET /transcribe/jobs/{id}", page.ThenFunc(app.transcriptionJob))
	mux.Handle("GET /transcribe/jobs/{id}/events", stream.ThenFunc(app.transcriptionEvents))

	mux.Handle("GET /archive", page.ThenFunc(app.archivePage))
	mux.Handle("POST /theme", page.ThenFunc(app.toggleTheme))

	mux.Handle("GET "+render.ImagePath, fragment.ThenFunc(app.mediaImage))
	mux.Handle("GET "+render.VideoPath, fragment.ThenFunc(app.mediaVideo))

	mux.HandleFunc("GET /api/healthy", app.healthy)

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}

package main

import (
	"github.com/myrjola/casefile/internal/contexthelpers"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/models"
	"log/slog"
	"net/http"
)

type archiveTemplateData struct {
	BaseTemplateData

	Sessions []models.ChatSession
	Scripts  []models.SavedScript
}

func (app *application) archivePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessions, err := app.archive.Sessions(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	scripts, err := app.archive.Scripts(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "archive", "", archiveTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Sessions:         sessions,
		Scripts:          scripts,
	})
}

func (app *application) toggleTheme(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	theme := contexthelpers.Theme(ctx).Toggle()
	if err := app.archive.SetTheme(ctx, theme); err != nil {
		app.serverError(w, r, errors.Wrap(err, "set theme", slog.String("theme", string(theme))))
		return
	}
	redirect(w, r, localPath(r.PostFormValue("return_to"), "/"))
}

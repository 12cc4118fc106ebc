package main

import (
	"context"
	"github.com/google/uuid"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/models"
	"github.com/myrjola/casefile/internal/repositories"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// chatSessionKey holds the ID of the chat session the browser is working on.
const chatSessionKey = "chatSessionID"

type chatTemplateData struct {
	BaseTemplateData

	Session models.ChatSession
	Mode    ai.Mode
	Query   string
	Error   string
}

func (app *application) currentSession(ctx context.Context) (models.ChatSession, error) {
	id := app.sessionManager.GetString(ctx, chatSessionKey)
	if id == "" {
		return models.ChatSession{}, nil
	}
	session, err := app.archive.Session(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		// Deleted from the archive in the meantime.
		app.sessionManager.Remove(ctx, chatSessionKey)
		return models.ChatSession{}, nil
	}
	if err != nil {
		return models.ChatSession{}, errors.Wrap(err, "get current session")
	}
	return session, nil
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	session, err := app.currentSession(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "home", "", chatTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Session:          session,
		Mode:             ai.ModeResearch,
		Query:            "",
		Error:            "",
	})
}

func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session, err := app.currentSession(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := chatTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Session:          session,
		Mode:             ai.ModeResearch,
		Query:            strings.TrimSpace(r.PostFormValue("query")),
		Error:            "",
	}
	invalid := func(msg string) {
		data.Error = msg
		app.render(w, r, http.StatusUnprocessableEntity, "home", "conversation", data)
	}

	if mode := r.PostFormValue("mode"); mode != "" {
		if data.Mode, err = ai.ParseMode(mode); err != nil || (data.Mode != ai.ModeResearch && data.Mode != ai.ModeVisual) {
			app.clientError(w, r, http.StatusBadRequest)
			return
		}
	}
	inline, filename, err := readUpload(r, "attachment")
	if err != nil {
		invalid("The attachment could not be read.")
		return
	}

	var env ai.RequestEnvelope
	switch {
	case data.Mode == ai.ModeVisual && inline == nil:
		invalid("Visual analysis needs an image or video attachment.")
		return
	case data.Mode == ai.ModeVisual:
		env = app.composer.Visual(data.Query, *inline)
	case data.Query == "" && inline == nil:
		invalid("Ask a question or attach a file.")
		return
	default:
		env = app.composer.Research(data.Query, inline)
	}

	resp := app.dispatcher.Dispatch(ctx, env)

	if session.ID == "" {
		session = models.ChatSession{
			ID:        uuid.NewString(),
			Title:     titleFrom(data.Query, titleFrom(filename, "Untitled research")),
			Messages:  nil,
			Timestamp: time.Time{},
		}
	}
	userText := data.Query
	if filename != "" {
		userText = strings.TrimSpace(userText + "\n\n📎 " + filename)
	}
	session.Messages = append(session.Messages,
		models.Message{Role: models.RoleUser, Text: userText, Citations: nil},
		models.Message{Role: models.RoleAssistant, Text: resp.Text, Citations: resp.Citations},
	)
	session.Timestamp = time.Now()
	if err = app.archive.SaveSession(ctx, session); err != nil {
		app.serverError(w, r, errors.Wrap(err, "save session", slog.String("session_id", session.ID)))
		return
	}
	app.sessionManager.Put(ctx, chatSessionKey, session.ID)

	if app.htmx.NewHandler(w, r).IsHxRequest() {
		data.Session = session
		data.Query = ""
		app.render(w, r, http.StatusOK, "home", "conversation", data)
		return
	}
	redirect(w, r, "/")
}

func (app *application) newChat(w http.ResponseWriter, r *http.Request) {
	app.sessionManager.Remove(r.Context(), chatSessionKey)
	redirect(w, r, "/")
}

func (app *application) openSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if _, err := app.archive.Session(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			app.notFound(w, r)
			return
		}
		app.serverError(w, r, err)
		return
	}
	app.sessionManager.Put(ctx, chatSessionKey, id)
	redirect(w, r, "/")
}

func (app *application) deleteSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	if err := app.archive.DeleteSession(ctx, id); err != nil {
		app.serverError(w, r, errors.Wrap(err, "delete session", slog.String("session_id", id)))
		return
	}
	if app.sessionManager.GetString(ctx, chatSessionKey) == id {
		app.sessionManager.Remove(ctx, chatSessionKey)
	}
	redirect(w, r, "/archive")
}

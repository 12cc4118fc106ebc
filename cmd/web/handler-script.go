package main

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/models"
	"github.com/myrjola/casefile/internal/repositories"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultWordCount = 1500

type scriptResult struct {
	Title       string
	Body        string
	Suggestions []string
	Citations   []models.Citation
	// Saveable is false when the body is a failure notice.
	Saveable bool
}

type scriptTemplateData struct {
	BaseTemplateData

	Params scriptParamsForm
	Tones  []string
	Result *scriptResult
	Error  string
}

// scriptParamsForm mirrors ai.ScriptParams with the word count kept as typed.
type scriptParamsForm struct {
	Topic     string
	Channel   string
	WordCount string
	Tone      string
	Theories  bool
}

func (app *application) scriptForm(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "script", "", scriptTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Params: scriptParamsForm{
			Topic:     r.URL.Query().Get("topic"),
			Channel:   "",
			WordCount: strconv.Itoa(defaultWordCount),
			Tone:      ai.Tones[0],
			Theories:  false,
		},
		Tones:  ai.Tones,
		Result: nil,
		Error:  "",
	})
}

func validationMessage(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "The script settings are invalid."
	}
	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		switch fe.Field() {
		case "Topic":
			msgs = append(msgs, "Enter a topic of at most 500 characters.")
		case "Channel":
			msgs = append(msgs, "The channel name can be at most 100 characters.")
		case "WordCount":
			msgs = append(msgs, "The word count must be between 300 and 10000.")
		case "Tone":
			msgs = append(msgs, "Pick one of the listed tones.")
		default:
			msgs = append(msgs, fe.Error())
		}
	}
	return strings.Join(msgs, " ")
}

func (app *application) compileScript(w http.ResponseWriter, r *http.Request) {
	form := scriptParamsForm{
		Topic:     strings.TrimSpace(r.PostFormValue("topic")),
		Channel:   strings.TrimSpace(r.PostFormValue("channel")),
		WordCount: strings.TrimSpace(r.PostFormValue("word_count")),
		Tone:      r.PostFormValue("tone"),
		Theories:  r.PostFormValue("theories") == "on",
	}
	data := scriptTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Params:           form,
		Tones:            ai.Tones,
		Result:           nil,
		Error:            "",
	}

	wordCount, err := strconv.Atoi(form.WordCount)
	if err != nil {
		wordCount = 0
	}
	env, err := app.composer.Script(ai.ScriptParams{
		Topic:     form.Topic,
		Channel:   form.Channel,
		WordCount: wordCount,
		Tone:      form.Tone,
		Theories:  form.Theories,
	})
	if err != nil {
		data.Error = validationMessage(err)
		app.render(w, r, http.StatusUnprocessableEntity, "script", "script-result", data)
		return
	}

	resp := app.dispatcher.Dispatch(r.Context(), env)
	_, suggestions := ai.ExtractDirectives(resp.Text)
	data.Result = &scriptResult{
		Title:       form.Topic,
		Body:        ai.StripDirectives(resp.Text),
		Suggestions: suggestions,
		Citations:   resp.Citations,
		Saveable:    resp.Tier != "",
	}
	app.render(w, r, http.StatusOK, "script", "script-result", data)
}

func (app *application) saveScript(w http.ResponseWriter, r *http.Request) {
	content := ai.StripDirectives(r.PostFormValue("content"))
	if strings.TrimSpace(content) == "" {
		app.clientError(w, r, http.StatusUnprocessableEntity)
		return
	}
	script := models.SavedScript{
		ID:        uuid.NewString(),
		Title:     titleFrom(r.PostFormValue("title"), "Untitled script"),
		Content:   content,
		Timestamp: time.Now(),
	}
	if err := app.archive.SaveScript(r.Context(), script); err != nil {
		app.serverError(w, r, errors.Wrap(err, "save script", slog.String("script_id", script.ID)))
		return
	}
	redirect(w, r, "/scripts/"+script.ID)
}

type savedScriptTemplateData struct {
	BaseTemplateData

	Script models.SavedScript
}

func (app *application) savedScript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	script, err := app.archive.Script(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		app.notFound(w, r)
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "savedscript", "", savedScriptTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Script:           script,
	})
}

func (app *application) deleteScript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := app.archive.DeleteScript(r.Context(), id); err != nil {
		app.serverError(w, r, errors.Wrap(err, "delete script", slog.String("script_id", id)))
		return
	}
	redirect(w, r, "/archive")
}

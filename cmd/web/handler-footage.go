package main

import (
	"github.com/myrjola/casefile/internal/ai"
	"net/http"
	"strings"
)

type footageTemplateData struct {
	BaseTemplateData

	Query    string
	Searched bool
	Results  []ai.FootageResult
	// Notice carries the failure text when the dispatcher could not get an answer.
	Notice string
}

func (app *application) footage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := footageTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Query:            query,
		Searched:         false,
		Results:          nil,
		Notice:           "",
	}
	if query != "" {
		resp := app.dispatcher.Dispatch(r.Context(), app.composer.Footage(query))
		data.Searched = true
		data.Results = ai.ExtractJSONArray(resp.Text, query)
		if resp.Tier == "" {
			data.Notice = resp.Text
		}
	}
	app.render(w, r, http.StatusOK, "footage", "footage-results", data)
}

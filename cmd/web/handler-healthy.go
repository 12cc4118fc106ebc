package main

import (
	"encoding/json"
	"net/http"
)

type healthStatus struct {
	Status            string `json:"status"`
	QueuedTranscripts int    `json:"queuedTranscripts"`
}

// healthy reports readiness together with the local transcription backlog.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(healthStatus{
		Status:            "ok",
		QueuedTranscripts: app.worker.Queued(),
	}); err != nil {
		app.serverError(w, r, err)
	}
}

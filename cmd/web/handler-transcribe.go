package main

import (
	"bytes"
	"fmt"
	"github.com/myrjola/casefile/internal/ai"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/transcribe"
	"log/slog"
	"net/http"
	"strings"
)

type transcribeTemplateData struct {
	BaseTemplateData

	Filename   string
	Transcript string
	Error      string
}

func (app *application) transcribePage(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "transcribe", "", transcribeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filename:         "",
		Transcript:       "",
		Error:            "",
	})
}

// transcriptionFailure maps a vision tier failure to a status and a message the user can act on.
func transcriptionFailure(err error) (int, string) {
	switch {
	case errors.Is(err, ai.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge,
			"The file is too large to transcribe. Try a shorter clip or use local transcription."
	case errors.Is(err, ai.ErrModelUnavailable):
		return http.StatusServiceUnavailable, "The transcription model is unavailable right now. Try again later."
	case errors.Is(err, ai.ErrMissingAttachment):
		return http.StatusUnprocessableEntity, "Choose a file to transcribe."
	default:
		return http.StatusBadGateway, "Transcription failed. Check the file and try again."
	}
}

func (app *application) transcribe(w http.ResponseWriter, r *http.Request) {
	data := transcribeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filename:         "",
		Transcript:       "",
		Error:            "",
	}
	inline, filename, err := readUpload(r, "media")
	if err != nil || inline == nil {
		data.Error = "Choose a file to transcribe."
		app.render(w, r, http.StatusUnprocessableEntity, "transcribe", "transcript", data)
		return
	}
	data.Filename = filename

	transcript, err := app.dispatcher.Transcribe(r.Context(), app.composer.Transcription(*inline))
	if err != nil {
		var status int
		status, data.Error = transcriptionFailure(err)
		app.render(w, r, status, "transcribe", "transcript", data)
		return
	}
	data.Transcript = transcript
	app.render(w, r, http.StatusOK, "transcribe", "transcript", data)
}

func (app *application) transcribeLocal(w http.ResponseWriter, r *http.Request) {
	data := transcribeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Filename:         "",
		Transcript:       "",
		Error:            "",
	}
	fail := func(status int, msg string) {
		data.Error = msg
		app.render(w, r, status, "transcribe", "", data)
	}

	file, _, err := r.FormFile("audio")
	if err != nil {
		fail(http.StatusUnprocessableEntity, "Choose a WAV recording to transcribe.")
		return
	}
	defer func() {
		_ = file.Close()
	}()
	samples, err := transcribe.DecodeWAV(file)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected audio upload", errors.SlogError(err))
		fail(http.StatusUnprocessableEntity, "The recording must be an uncompressed WAV file with 8 or 16 bit PCM or "+
			"32 bit float samples at 8 to 192 kHz.")
		return
	}

	id, err := app.worker.Submit(r.Context(), samples)
	switch {
	case errors.Is(err, transcribe.ErrEmptyAudio):
		fail(http.StatusUnprocessableEntity, "The recording is empty.")
		return
	case errors.Is(err, transcribe.ErrQueueFull):
		fail(http.StatusServiceUnavailable, "Too many recordings are waiting. Try again in a moment.")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}
	redirect(w, r, "/transcribe/jobs/"+id)
}

type jobTemplateData struct {
	BaseTemplateData

	Job transcribe.Job
}

func (app *application) transcriptionJob(w http.ResponseWriter, r *http.Request) {
	job, ok := app.worker.Job(r.PathValue("id"))
	if !ok {
		app.notFound(w, r)
		return
	}
	app.render(w, r, http.StatusOK, "job", "", jobTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Job:              job,
	})
}

// transcriptionEvents streams the job's events as SSE. Each event carries the rendered job status so that the
// htmx SSE extension can swap it in directly. The stream ends with an "end" event.
func (app *application) transcriptionEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")
	job, ok := app.worker.Job(id)
	if !ok {
		app.notFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)

	send := func(event string, job transcribe.Job) bool {
		if err := app.writeEvent(w, r, event, job); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelDebug, "stopped event stream", errors.SlogError(err))
			return false
		}
		if err := rc.Flush(); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelDebug, "stopped event stream", errors.SlogError(err))
			return false
		}
		return true
	}

	terminalSent := false
	if !job.Terminal() {
		events, claimed, err := app.worker.Events(ctx, id)
		if err != nil {
			return
		}
	stream:
		for claimed {
			select {
			case <-ctx.Done():
				return
			case <-app.stopStreams:
				return
			case event, open := <-events:
				if !open {
					break stream
				}
				job.Percent = event.Percent
				switch event.Kind {
				case transcribe.EventProgress:
					job.Status = transcribe.StatusProcessing
				case transcribe.EventDone:
					job.Status, job.Transcript = transcribe.StatusDone, event.Transcript
				case transcribe.EventFailed:
					job.Status, job.Error = transcribe.StatusFailed, event.Error
				}
				if !send(string(event.Kind), job) {
					return
				}
				terminalSent = terminalSent || event.Kind != transcribe.EventProgress
			}
		}
	}
	if !terminalSent {
		if job, ok = app.worker.Job(id); !ok || !job.Terminal() {
			return
		}
		if !send(string(job.Status), job) {
			return
		}
	}
	_, _ = fmt.Fprint(w, "event: end\ndata: end\n\n")
	_ = rc.Flush()
}

func (app *application) writeEvent(w http.ResponseWriter, r *http.Request, event string, job transcribe.Job) error {
	var buf bytes.Buffer
	if err := app.execute(&buf, r, "job", "job-status", job); err != nil {
		return err
	}
	var sb strings.Builder
	sb.WriteString("event: " + event + "\n")
	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		sb.WriteString("data: " + line + "\n")
	}
	sb.WriteString("\n")
	if _, err := w.Write([]byte(sb.String())); err != nil {
		return errors.Wrap(err, "write event")
	}
	return nil
}

package transcribe_test

import (
	"context"
	"github.com/myrjola/casefile/internal/transcribe"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWhisperTranscriber(t *testing.T) {
	var (
		gotModel string
		gotAudio []float32
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		gotModel = r.FormValue("model")
		file, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		if gotAudio, err = transcribe.DecodeWAV(file); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"  The letter arrived on a Tuesday.  "}`)
	}))
	t.Cleanup(srv.Close)

	tr := transcribe.NewWhisperTranscriber("test-key", srv.URL+"/v1", "whisper-1")
	var progress []int
	text, err := tr.Transcribe(context.Background(), make([]float32, transcribe.SampleRate), func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, err)
	require.Equal(t, "The letter arrived on a Tuesday.", text)
	require.Equal(t, "whisper-1", gotModel)
	require.Len(t, gotAudio, transcribe.SampleRate)
	require.NotEmpty(t, progress)
	require.Equal(t, 99, progress[len(progress)-1])
}

func TestWhisperTranscriber_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	t.Cleanup(srv.Close)

	tr := transcribe.NewWhisperTranscriber("test-key", srv.URL+"/v1", "whisper-1")
	_, err := tr.Transcribe(context.Background(), make([]float32, 10), func(int) {})
	require.Error(t, err)
}

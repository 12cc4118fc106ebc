package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/casefile/internal/e2etest"
	"github.com/stretchr/testify/require"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"strings"
	"testing"
)

const (
	busyModel      = "busy-model"
	missingModel   = "missing-model"
	researchAnswer = "The case was reported by several outlets."
)

// fakeOpenAI serves the parts of the OpenAI API the application uses. Replies are chosen by prompt content so that
// every mode gets a realistic answer.
func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err = json.Unmarshal(body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		switch req.Model {
		case busyModel:
			writeAPIError(w, http.StatusServiceUnavailable, "The model is overloaded")
			return
		case missingModel:
			writeAPIError(w, http.StatusNotFound, "The model does not exist")
			return
		}

		prompt := string(body)
		var reply string
		switch {
		case strings.Contains(prompt, "Return ONLY a JSON array"):
			reply = "Here you go:\n" + `[{"title":"Rainy street","url":"https://example.com/rain","source":"Pexels"},` +
				`{"title":"Night traffic","source":"Pixabay"}]`
		case strings.Contains(prompt, "SUGGESTION:"):
			reply = "# The Lighthouse Case\n\nIt began on a stormy night.\n\n" +
				"> SUGGESTION: The Keeper Mystery\n> SUGGESTION: The Flannan Isles\n"
		case strings.Contains(prompt, "Transcribe all speech"):
			reply = "[00:00] Hello from the recording."
		default:
			reply = researchAnswer + "\n\n![Courthouse](https://en.wikipedia.org/wiki/File:Courthouse.jpg)\n\n" +
				"[Interview](https://www.youtube.com/watch?v=dQw4w9WgXcQ)"
		}
		writeJSON(w, map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 0,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	})

	mux.HandleFunc("POST /v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"text": "local transcript"})
	})

	mux.HandleFunc("GET /images/photo.png", func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 320, 180))); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(buf.Bytes())
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "server_error", "code": status},
	})
}

// testEnv returns a lookupEnv for a server backed by the fake API. overrides win over the defaults.
func testEnv(apiURL string, overrides map[string]string) func(string) (string, bool) {
	env := map[string]string{
		"CASEFILE_ADDR":          "localhost:0",
		"CASEFILE_SQLITE_URL":    ":memory:",
		"CASEFILE_AI_PROVIDER":   "openai",
		"OPENAI_API_KEY":         "test-key",
		"OPENAI_BASE_URL":        apiURL + "/v1",
		"CASEFILE_PRIMARY_MODEL": "primary-model",
		"CASEFILE_BACKUP_MODEL":  "backup-model",
		"CASEFILE_VISION_MODEL":  "vision-model",
		"CASEFILE_PROBE_TIMEOUT": "2s",
	}
	for k, v := range overrides {
		env[k] = v
	}
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

// startTestServer starts the application against a fresh fake API and in-memory database.
func startTestServer(t *testing.T, overrides map[string]string) (*e2etest.Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	api := fakeOpenAI(t)
	server, err := e2etest.StartServer(ctx, io.Discard, testEnv(api.URL, overrides), run)
	require.NoError(t, err)
	return server, api
}

// hxGet performs an htmx-style GET and returns the status and body.
func hxGet(t *testing.T, server *e2etest.Server, urlPath string) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL()+urlPath, nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func requireStatus(t *testing.T, want int, resp *http.Response) {
	t.Helper()
	defer func() {
		_ = resp.Body.Close()
	}()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(t, want, resp.StatusCode, fmt.Sprintf("body:\n%s", body))
}

func formCSRFToken(t *testing.T, server *e2etest.Server, formPath, action string) string {
	t.Helper()
	doc, err := server.Client().GetDoc(context.Background(), formPath)
	require.NoError(t, err)
	token, ok := doc.Find(fmt.Sprintf("form[action='%s'] input[name=csrf_token]", action)).Attr("value")
	require.True(t, ok, "csrf_token not found in form %s on %s", action, formPath)
	return token
}

func doPost(t *testing.T, server *e2etest.Server, action, contentType string, body io.Reader, hx bool) (int, string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, server.URL()+action, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	if hx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()
	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(respBody)
}

// postForm submits the form posting to action found on formPath and returns the final status and body. Redirects
// are followed.
func postForm(
	t *testing.T, server *e2etest.Server, formPath, action string, values neturl.Values, hx bool,
) (int, string) {
	t.Helper()
	form := neturl.Values{}
	for k, v := range values {
		form[k] = v
	}
	form.Set("csrf_token", formCSRFToken(t, server, formPath, action))
	return doPost(t, server, action, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), hx)
}

// postMultipart is postForm with a file upload.
func postMultipart(
	t *testing.T, server *e2etest.Server, formPath, action string, values neturl.Values, file e2etest.File, hx bool,
) (int, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, vs := range values {
		for _, v := range vs {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	require.NoError(t, mw.WriteField("csrf_token", formCSRFToken(t, server, formPath, action)))
	fw, err := mw.CreateFormFile(file.Field, file.Name)
	require.NoError(t, err)
	_, err = fw.Write(file.Data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return doPost(t, server, action, mw.FormDataContentType(), &body, hx)
}

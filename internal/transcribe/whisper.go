package transcribe

import (
	"bytes"
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/sashabaranov/go-openai"
	"io"
	"log/slog"
	"strings"
)

// WhisperTranscriber uploads the samples as WAV to an OpenAI compatible transcription endpoint.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber(apiKey, baseURL, model string) *WhisperTranscriber {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &WhisperTranscriber{client: openai.NewClientWithConfig(config), model: model}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, samples []float32, progress func(int)) (string, error) {
	var buf bytes.Buffer
	if err := EncodeWAV(&buf, samples, SampleRate); err != nil {
		return "", err
	}
	size := buf.Len()
	reader := &progressReader{r: &buf, total: size, read: 0, progress: progress}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{ //nolint:exhaustruct // optional fields
		Model:    t.model,
		FilePath: "audio.wav",
		Reader:   reader,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", errors.Wrap(err, "create transcription", slog.String("model", t.model), slog.Int("bytes", size))
	}
	return strings.TrimSpace(resp.Text), nil
}

// progressReader reports how much of the upload body has been consumed.
type progressReader struct {
	r        io.Reader
	total    int
	read     int
	progress func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += n
	if p.total > 0 && n > 0 {
		// Upload progress tops out below 100 until the transcript arrives.
		p.progress(p.read * 99 / p.total) //nolint:mnd // percent
	}
	return n, err //nolint:wrapcheck // io.Reader contract
}

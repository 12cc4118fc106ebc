package ai

import (
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/models"
	"log/slog"
)

// Mode selects the behaviour variant of a request. It is fixed for the lifetime of the request.
type Mode string

const (
	ModeResearch Mode = "research"
	ModeScript   Mode = "script"
	ModeVisual   Mode = "visual"
	ModeFootage  Mode = "footage"
)

var ErrUnknownMode = errors.NewSentinel("unknown operating mode")

// ParseMode validates a mode received at the edge of the application.
func ParseMode(s string) (Mode, error) {
	switch mode := Mode(s); mode {
	case ModeResearch, ModeScript, ModeVisual, ModeFootage:
		return mode, nil
	default:
		return "", errors.Wrap(ErrUnknownMode, "parse mode", slog.String("mode", s))
	}
}

// InlineBinary is an attachment sent inline with the request.
type InlineBinary struct {
	Data     []byte
	MIMEType string
}

// RequestEnvelope is everything needed to make one model call. It is built per call and not modified after dispatch.
type RequestEnvelope struct {
	Mode              Mode
	Query             string
	Inline            *InlineBinary
	SystemInstruction string
	WebSearch         bool
}

func (env RequestEnvelope) parts() []Part {
	parts := []Part{{Text: env.Query, Inline: nil}}
	if env.Inline != nil {
		parts = append(parts, Part{Text: "", Inline: env.Inline})
	}
	return parts
}

// Tier names the model tier that produced a response.
type Tier string

const (
	TierPrimary Tier = "primary"
	TierBackup  Tier = "backup"
	TierVision  Tier = "vision"
)

// ModelResponse is the normalised answer shown to the user. Text is never empty.
type ModelResponse struct {
	Text      string
	Citations []models.Citation
	// Tier is empty when the text is a failure sentinel.
	Tier Tier
}

package ai

import (
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/logging"
	"log/slog"
	"strings"
)

const (
	// BackupMarker is appended to answers served by the backup tier.
	BackupMarker = "\n\n*(Rerouted via backup model)*"
	// OverloadSentinel is returned when both tiers are saturated.
	OverloadSentinel = "⚠️ System overload: both primary and backup models are busy. Please try again shortly."
	// ConnectionErrorSentinel is returned on failures that are not capacity related.
	ConnectionErrorSentinel = "⚠️ Connection error: unable to reach the research service. " +
		"Please check your connection and try again."
	// EmptyResponseSentinel replaces empty model output.
	EmptyResponseSentinel = "No response generated."
)

var (
	ErrPayloadTooLarge     = errors.NewSentinel("payload too large")
	ErrModelUnavailable    = errors.NewSentinel("model unavailable")
	ErrTranscriptionFailed = errors.NewSentinel("transcription failed")
	ErrMissingAttachment   = errors.NewSentinel("missing attachment")
)

// Tiers names the model used for each tier.
type Tiers struct {
	Primary string
	Backup  string
	Vision  string
}

// Dispatcher sends envelopes to the model tiers.
type Dispatcher struct {
	model          Model
	tiers          Tiers
	maxInlineBytes int64
	logger         *slog.Logger
}

func NewDispatcher(model Model, tiers Tiers, maxInlineBytes int64, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		model:          model,
		tiers:          tiers,
		maxInlineBytes: maxInlineBytes,
		logger:         logger,
	}
}

func (d *Dispatcher) generate(ctx context.Context, modelName string, env RequestEnvelope) (GenerateResponse, error) {
	resp, err := d.model.Generate(ctx, GenerateRequest{
		Model:             modelName,
		SystemInstruction: env.SystemInstruction,
		Parts:             env.parts(),
		WebSearch:         env.WebSearch,
	})
	if err != nil {
		return GenerateResponse{}, errors.Wrap(err, "generate", slog.String("model", modelName))
	}
	return resp, nil
}

// Dispatch sends env to the primary tier and falls back to the backup tier once on overload. It never fails: failures
// are logged and turned into user-facing sentinel text.
func (d *Dispatcher) Dispatch(ctx context.Context, env RequestEnvelope) ModelResponse {
	ctx = logging.WithAttrs(ctx, slog.String("mode", string(env.Mode)))

	resp, err := d.generate(ctx, d.tiers.Primary, env)
	if err == nil {
		return ModelResponse{Text: nonEmpty(resp.Text), Citations: resp.Citations, Tier: TierPrimary}
	}

	if !IsOverload(err) {
		d.logger.LogAttrs(ctx, slog.LevelError, "primary tier failed",
			slog.String("tier", string(TierPrimary)), errors.SlogError(err))
		return ModelResponse{Text: ConnectionErrorSentinel, Citations: nil, Tier: ""}
	}
	d.logger.LogAttrs(ctx, slog.LevelWarn, "primary tier overloaded, rerouting to backup",
		slog.String("tier", string(TierPrimary)), errors.SlogError(err))

	resp, err = d.generate(ctx, d.tiers.Backup, env)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "backup tier failed",
			slog.String("tier", string(TierBackup)), errors.SlogError(err))
		return ModelResponse{Text: OverloadSentinel, Citations: nil, Tier: ""}
	}
	return ModelResponse{Text: nonEmpty(resp.Text) + BackupMarker, Citations: resp.Citations, Tier: TierBackup}
}

// Transcribe sends an attachment to the vision tier once without fallback.
//
// The returned error wraps ErrPayloadTooLarge, ErrModelUnavailable or ErrTranscriptionFailed.
func (d *Dispatcher) Transcribe(ctx context.Context, env RequestEnvelope) (string, error) {
	if env.Inline == nil {
		return "", errors.Wrap(ErrMissingAttachment, "transcribe")
	}
	size := int64(len(env.Inline.Data))
	if d.maxInlineBytes > 0 && size > d.maxInlineBytes {
		return "", errors.Wrap(ErrPayloadTooLarge, "transcribe",
			slog.Int64("bytes", size), slog.Int64("max_bytes", d.maxInlineBytes))
	}

	resp, err := d.generate(ctx, d.tiers.Vision, env)
	if err != nil {
		d.logger.LogAttrs(ctx, slog.LevelError, "transcription failed",
			slog.String("tier", string(TierVision)), slog.String("mime_type", env.Inline.MIMEType), errors.SlogError(err))
		switch {
		case isPayloadTooLarge(err):
			return "", errors.Join(ErrPayloadTooLarge, err)
		case isModelUnavailable(err):
			return "", errors.Join(ErrModelUnavailable, err)
		default:
			return "", errors.Join(ErrTranscriptionFailed, err)
		}
	}
	return nonEmpty(resp.Text), nil
}

func nonEmpty(text string) string {
	if strings.TrimSpace(text) == "" {
		return EmptyResponseSentinel
	}
	return text
}

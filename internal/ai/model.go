package ai

import (
	"context"
	"github.com/myrjola/casefile/internal/models"
)

// Part is a piece of user content, either text or inline binary data.
type Part struct {
	Text   string
	Inline *InlineBinary
}

type GenerateRequest struct {
	Model             string
	SystemInstruction string
	Parts             []Part
	WebSearch         bool
}

type GenerateResponse struct {
	Text      string
	Citations []models.Citation
}

// Model is the boundary to the hosted generative service.
type Model interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
}

// ModelFunc adapts a function to the Model interface.
type ModelFunc func(ctx context.Context, req GenerateRequest) (GenerateResponse, error)

func (f ModelFunc) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	return f(ctx, req)
}

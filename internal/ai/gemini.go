package ai

import (
	"context"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/myrjola/casefile/internal/models"
	"google.golang.org/genai"
	"strings"
)

// GeminiModel generates content with the Gemini API.
type GeminiModel struct {
	client *genai.Client
}

// NewGeminiModel creates a Gemini client. baseURL overrides the API endpoint when non-empty.
func NewGeminiModel(ctx context.Context, apiKey, baseURL string) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults are fine
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL}, //nolint:exhaustruct // only the endpoint is overridden
	})
	if err != nil {
		return nil, errors.Wrap(err, "create genai client")
	}
	return &GeminiModel{client: client}, nil
}

func (m *GeminiModel) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	contents, config := geminiRequest(req)
	resp, err := m.client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return GenerateResponse{}, errors.Wrap(err, "generate content")
	}
	return geminiResponse(resp), nil
}

func geminiRequest(req GenerateRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch {
		case p.Inline != nil:
			parts = append(parts, genai.NewPartFromBytes(p.Inline.Data, p.Inline.MIMEType))
		case p.Text != "":
			parts = append(parts, genai.NewPartFromText(p.Text))
		}
	}

	config := &genai.GenerateContentConfig{} //nolint:exhaustruct // populated below
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}
	if req.WebSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}} //nolint:exhaustruct // search only
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, config
}

// geminiResponse concatenates the text parts of the first candidate and collects web grounding chunks as citations.
func geminiResponse(resp *genai.GenerateContentResponse) GenerateResponse {
	var out GenerateResponse
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return out
	}
	candidate := resp.Candidates[0]

	if candidate.Content != nil {
		var sb strings.Builder
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			sb.WriteString(part.Text)
		}
		out.Text = sb.String()
	}

	if candidate.GroundingMetadata != nil {
		seen := map[string]bool{}
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || seen[chunk.Web.URI] {
				continue
			}
			seen[chunk.Web.URI] = true
			title := chunk.Web.Title
			if title == "" {
				title = chunk.Web.URI
			}
			out.Citations = append(out.Citations, models.Citation{Title: title, URI: chunk.Web.URI})
		}
	}
	return out
}

package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"github.com/myrjola/casefile/internal/errors"
	"github.com/sashabaranov/go-openai"
	"strings"
)

// MaxTokens caps the completion length of OpenAI-compatible models.
const MaxTokens = 8192

// OpenAIModel generates content with an OpenAI-compatible chat completion endpoint. It has no web search tool, so
// responses carry no citations.
type OpenAIModel struct {
	client *openai.Client
}

// NewOpenAIModel creates a client. baseURL overrides the API endpoint when non-empty.
func NewOpenAIModel(apiKey, baseURL string) *OpenAIModel {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIModel{client: openai.NewClientWithConfig(config)}
}

func (m *OpenAIModel) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	completion, err := m.client.CreateChatCompletion(ctx, openAIRequest(req))
	if err != nil {
		return GenerateResponse{}, errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return GenerateResponse{}, nil
	}
	return GenerateResponse{Text: completion.Choices[0].Message.Content, Citations: nil}, nil
}

func openAIRequest(req GenerateRequest) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // text only
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}

	var (
		texts    []string
		hasImage bool
		parts    []openai.ChatMessagePart
	)
	for _, p := range req.Parts {
		switch {
		case p.Inline != nil:
			hasImage = true
			dataURL := fmt.Sprintf("data:%s;base64,%s", p.Inline.MIMEType, base64.StdEncoding.EncodeToString(p.Inline.Data))
			parts = append(parts, openai.ChatMessagePart{ //nolint:exhaustruct // image part
				Type:     openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{URL: dataURL, Detail: openai.ImageURLDetailAuto},
			})
		case p.Text != "":
			texts = append(texts, p.Text)
			parts = append(parts, openai.ChatMessagePart{ //nolint:exhaustruct // text part
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		}
	}

	user := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser} //nolint:exhaustruct // set below
	if hasImage {
		user.MultiContent = parts
	} else {
		user.Content = strings.Join(texts, "\n\n")
	}
	messages = append(messages, user)

	return openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:     req.Model,
		MaxTokens: MaxTokens,
		Messages:  messages,
	}
}

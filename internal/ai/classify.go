package ai

import (
	"github.com/myrjola/casefile/internal/errors"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"net/http"
	"strings"
)

// statusCode digs the HTTP status out of the provider SDK errors. It returns 0 when unknown.
func statusCode(err error) int {
	var (
		geminiErr    genai.APIError
		geminiPtrErr *genai.APIError
		openaiErr    *openai.APIError
		requestErr   *openai.RequestError
	)
	switch {
	case errors.As(err, &geminiErr):
		return geminiErr.Code
	case errors.As(err, &geminiPtrErr):
		return geminiPtrErr.Code
	case errors.As(err, &openaiErr):
		return openaiErr.HTTPStatusCode
	case errors.As(err, &requestErr):
		return requestErr.HTTPStatusCode
	default:
		return 0
	}
}

func messageContains(err error, needles ...string) bool {
	msg := strings.ToLower(err.Error())
	for _, needle := range needles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// IsOverload reports whether err is a transient capacity failure worth retrying on the backup tier.
func IsOverload(err error) bool {
	if err == nil {
		return false
	}
	switch statusCode(err) {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable:
		return true
	case 0:
		return messageContains(err, "429", "503", "resource_exhausted", "unavailable", "overloaded", "rate limit")
	default:
		return false
	}
}

func isPayloadTooLarge(err error) bool {
	if statusCode(err) == http.StatusRequestEntityTooLarge {
		return true
	}
	return messageContains(err, "413", "too large", "exceeds the maximum")
}

func isModelUnavailable(err error) bool {
	if statusCode(err) == http.StatusNotFound {
		return true
	}
	return messageContains(err, "not_found", "not found", "not supported")
}

package contexthelpers

import (
	"context"
	"github.com/myrjola/casefile/internal/models"
)

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// Theme returns the theme stored for the request, dark when unset.
func Theme(ctx context.Context) models.Theme {
	theme, ok := ctx.Value(themeContextKey).(models.Theme)
	if !ok {
		return models.ThemeDark
	}

	return theme
}

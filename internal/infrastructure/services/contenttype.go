package services

import (
	"net/http"
	"strings"
	"unicode"
)

// InferContentType determines the content type for a mock response from the
// explicit setting or from the rendered body.
func InferContentType(explicit string, body []byte) string {
	if explicit != "" {
		return explicit
	}

	trimmed := strings.TrimLeftFunc(string(body), unicode.IsSpace)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return "application/json"
	}

	if len(body) > 0 {
		return http.DetectContentType(body)
	}

	return "application/octet-stream"
}

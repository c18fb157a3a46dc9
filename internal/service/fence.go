package service

import "strings"

// StripFences removes a Markdown code fence wrapped around a model response.
// A leading "```json" or "```" and an optional newline are removed, as are an
// optional newline and "```" at the end.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimPrefix(cleaned, "\n")

	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "\n")
	}
	return cleaned
}

// Fence wraps JSON text the way models commonly do
func Fence(text string) string {
	return "```json\n" + text + "\n```"
}

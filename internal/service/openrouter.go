package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterModel implements domain.TextModel using an OpenAI-compatible
// chat-completions endpoint (OpenRouter by default)
type OpenRouterModel struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterModel creates a new chat-completions text model.
// The client has no timeout; the caller's context bounds the call.
func NewOpenRouterModel(apiKey, model, baseURL string) *OpenRouterModel {
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterModel{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Complete sends a single user prompt and returns the raw completion text
func (m *OpenRouterModel) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("text-model").Start(ctx, "openrouter.Complete")
	defer span.End()
	span.SetAttributes(attribute.String("llm.model", m.model))

	if m.apiKey == "" {
		return "", domain.NewGenerationError(domain.ErrConfiguration, 0, "text model API key not configured")
	}

	requestBody := map[string]interface{}{
		"model": m.model,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": prompt,
			},
		},
	}

	payload, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewGenerationError(domain.ErrConfiguration, 0, "failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "AI Fitness Coach")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return "", domain.NewGenerationError(domain.ErrNetwork, 0, "failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewGenerationError(domain.ErrNetwork, resp.StatusCode, "failed to read response: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
		return "", domain.NewGenerationError(domain.ErrNetwork, resp.StatusCode, "text model api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message  string                 `json:"message"`
			Code     int                    `json:"code"`
			Metadata map[string]interface{} `json:"metadata"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return "", domain.NewGenerationError(domain.ErrParse, resp.StatusCode, "failed to parse response: %w", err)
	}

	if apiResponse.Error != nil {
		errorMsg := fmt.Sprintf("text model error: %s (code: %d)", apiResponse.Error.Message, apiResponse.Error.Code)
		if apiResponse.Error.Metadata != nil {
			if providerErr, ok := apiResponse.Error.Metadata["provider_error"].(string); ok {
				errorMsg += fmt.Sprintf(" - Provider error: %s", providerErr)
			}
		}
		return "", domain.NewGenerationError(domain.ErrNetwork, apiResponse.Error.Code, "%s", errorMsg)
	}

	if len(apiResponse.Choices) == 0 {
		return "", domain.NewGenerationError(domain.ErrParse, resp.StatusCode, "no response from AI model")
	}

	return apiResponse.Choices[0].Message.Content, nil
}

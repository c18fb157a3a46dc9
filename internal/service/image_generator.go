package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const imagePromptFormat = "high quality realistic photo of %s, professional fitness photography, 4k, detailed"

// HuggingFaceImageGenerator implements domain.ImageGenerator against a
// Hugging Face text-to-image inference endpoint
type HuggingFaceImageGenerator struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewHuggingFaceImageGenerator creates a new image generator
func NewHuggingFaceImageGenerator(apiKey, endpoint string) *HuggingFaceImageGenerator {
	return &HuggingFaceImageGenerator{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: &http.Client{},
	}
}

// Generate returns a base64 data URI for an image of label.
// Errors are *domain.ImageGenerationError carrying the upstream status.
func (g *HuggingFaceImageGenerator) Generate(ctx context.Context, label string) (string, error) {
	ctx, span := otel.Tracer("image-model").Start(ctx, "huggingface.Generate")
	defer span.End()
	span.SetAttributes(attribute.String("image.label", label))

	if g.apiKey == "" {
		log.Println("Hugging Face API key not found")
		return "", domain.NewImageGenerationError(domain.ErrConfiguration, http.StatusInternalServerError, "API key not configured")
	}

	label = strings.TrimSpace(label)
	if label == "" {
		return "", domain.NewImageGenerationError(domain.ErrConfiguration, http.StatusBadRequest, "prompt is required")
	}

	payload, err := json.Marshal(map[string]string{
		"inputs": fmt.Sprintf(imagePromptFormat, label),
	})
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ErrConfiguration, http.StatusInternalServerError, "failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ErrConfiguration, http.StatusInternalServerError, "failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", domain.NewImageGenerationError(domain.ErrNetwork, http.StatusInternalServerError, "%v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ErrNetwork, http.StatusInternalServerError, "failed to read image: %v", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Hugging Face error: %d %s", resp.StatusCode, string(body))
		return "", domain.NewImageGenerationError(domain.ErrNetwork, resp.StatusCode, "Hugging Face error: %s", string(body))
	}
	if len(body) == 0 {
		return "", domain.NewImageGenerationError(domain.ErrNetwork, http.StatusBadGateway, "Hugging Face returned an empty image")
	}

	return fmt.Sprintf("data:%s;base64,%s", detectImageType(body), base64.StdEncoding.EncodeToString(body)), nil
}

// detectImageType detects the MIME type of an image from its header bytes
func detectImageType(data []byte) string {
	if len(data) < 12 {
		return "image/jpeg"
	}
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}
	if data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return "image/jpeg"
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// Placeholder images shown when generation fails
const (
	ExercisePlaceholder = "https://source.unsplash.com/800x600/?fitness,exercise"
	MealPlaceholder     = "https://source.unsplash.com/800x600/?food,meal"
)

// ImageKind selects the placeholder used on failure
type ImageKind int

const (
	ExerciseImage ImageKind = iota
	MealImage
)

// Placeholder returns the static fallback image URL for kind
func (k ImageKind) Placeholder() string {
	if k == MealImage {
		return MealPlaceholder
	}
	return ExercisePlaceholder
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// GenerateImage asks the image proxy for a picture of label. It implements
// domain.ImageGenerator; failures are *domain.ImageGenerationError.
func (c *Client) GenerateImage(ctx context.Context, label string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/generate-image", map[string]string{"prompt": label})
	if err != nil {
		return "", domain.NewImageGenerationError(domain.ErrConfiguration, 0, "%v", err)
	}

	data, _, err := c.send(req)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			kind := domain.ErrNetwork
			if apiErr.Message == "API key not configured" {
				kind = domain.ErrConfiguration
			}
			return "", domain.NewImageGenerationError(kind, apiErr.StatusCode, "%s", apiErr.Message)
		}
		return "", domain.NewImageGenerationError(domain.ErrNetwork, 0, "%v", err)
	}

	var body imageResponse
	if err := json.Unmarshal(data, &body); err != nil || body.ImageURL == "" {
		return "", domain.NewImageGenerationError(domain.ErrParse, 0, "unexpected image response: %s", string(data))
	}
	return body.ImageURL, nil
}

// ImageOrPlaceholder never blocks on failure: any error yields the static
// placeholder for kind.
func (c *Client) ImageOrPlaceholder(ctx context.Context, label string, kind ImageKind) string {
	imageURL, err := c.GenerateImage(ctx, label)
	if err != nil {
		log.Printf("Failed to generate image: %v", err)
		return kind.Placeholder()
	}
	return imageURL
}

// MealLabel is the image label used for a meal: its items joined with ", "
func MealLabel(meal domain.Meal) string {
	if len(meal.Items) == 0 {
		return fmt.Sprintf("%s meal", meal.Title())
	}
	return meal.Description()
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate-image", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		switch body["prompt"] {
		case "Plank":
			_, _ = w.Write([]byte(`{"imageUrl":"data:image/jpeg;base64,AAAA"}`))
		case "unconfigured":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"API key not configured"}`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Hugging Face error: loading"}`))
		}
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL + "/"})

	url, err := c.GenerateImage(context.Background(), "Plank")
	require.NoError(t, err)
	assert.Equal(t, "data:image/jpeg;base64,AAAA", url)

	_, err = c.GenerateImage(context.Background(), "Burpee")
	var imgErr *domain.ImageGenerationError
	require.True(t, errors.As(err, &imgErr))
	assert.Equal(t, http.StatusServiceUnavailable, imgErr.StatusCode)
	assert.Equal(t, "Hugging Face error: loading", err.Error())
	assert.ErrorIs(t, err, domain.ErrNetwork)

	_, err = c.GenerateImage(context.Background(), "unconfigured")
	assert.ErrorIs(t, err, domain.ErrConfiguration)

	assert.Equal(t, ExercisePlaceholder, c.ImageOrPlaceholder(context.Background(), "Burpee", ExerciseImage))
	assert.Equal(t, MealPlaceholder, c.ImageOrPlaceholder(context.Background(), "Burpee", MealImage))
	assert.Equal(t, "data:image/jpeg;base64,AAAA", c.ImageOrPlaceholder(context.Background(), "Plank", MealImage))
}

func TestGenerateImageUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url})
	_, err := c.GenerateImage(context.Background(), "Plank")
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, ExercisePlaceholder, c.ImageOrPlaceholder(context.Background(), "Plank", ExerciseImage))
}

func TestMealLabel(t *testing.T) {
	assert.Equal(t, "Oats, Berries", MealLabel(domain.Meal{Name: "breakfast", Items: []string{"Oats", "Berries"}}))
	assert.Equal(t, "mid Morning Snack meal", MealLabel(domain.Meal{Name: "midMorningSnack"}))
}

func TestClientSendsTokenAndDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/sessions":
			assert.Empty(t, r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok","session_id":"01J","expires_at":"2030-01-01T00:00:00Z"}}`))
		case "/v1/theme/toggle":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"success":true,"data":{"darkMode":true}}`))
		case "/v1/saved-plans/7":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"success":false,"error":"saved plan index out of range: 7"}`))
		case "/v1/plan/export":
			w.Header().Set("Content-Type", "application/pdf")
			w.Header().Set("Content-Disposition", `attachment; filename="Asha_Fitness_Plan.pdf"`)
			_, _ = w.Write([]byte("%PDF-1.3"))
		case "/v1/quote":
			assert.Equal(t, "true", r.URL.Query().Get("refresh"))
			_, _ = w.Write([]byte(`{"success":true,"data":{"quote":"Lift."}}`))
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	anon := New(Config{BaseURL: srv.URL})

	session, err := anon.CreateSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
	assert.Equal(t, "01J", session.SessionID)

	c := anon.WithToken(session.Token)

	dark, err := c.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.True(t, dark)

	err = c.DeleteSavedPlan(ctx, 7)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "saved plan index out of range: 7", apiErr.Message)

	data, filename, err := c.DownloadPDF(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Asha_Fitness_Plan.pdf", filename)
	assert.Equal(t, "%PDF-1.3", string(data))

	quote, err := c.Quote(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "Lift.", quote)
}

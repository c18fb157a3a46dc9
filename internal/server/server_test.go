package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const planJSON = `{
  "workoutPlan": {
    "overview": "Full body three times a week",
    "weeklySchedule": [
      {"day": "Monday", "focus": "Full Body", "exercises": [{"name": "Goblet Squat", "sets": 3, "reps": "10-12", "rest": "60 seconds"}], "duration": "45 minutes"}
    ],
    "tips": ["Warm up first"]
  },
  "dietPlan": {
    "dailyCalories": "1900",
    "macros": {"protein": "120g", "carbs": "200g", "fats": "60g"},
    "meals": {"breakfast": {"time": "8:00 AM", "items": ["Oats", "Berries"], "calories": "400"}},
    "hydration": "2.5 litres",
    "tips": ["Eat protein with every meal"]
  },
  "motivation": {"quote": "Start where you are", "dailyTips": ["Walk 8k steps"], "expectedResults": "Steady fat loss"}
}`

const profileJSON = `{"name":"Asha","age":31,"gender":"female","height":170,"weight":70,"goal":"weight-loss","fitnessLevel":"beginner","location":"home","diet":"veg"}`

type scriptedModel struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (m *scriptedModel) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if strings.Contains(prompt, "motivational fitness quote") {
		return "Keep going.", nil
	}
	return m.reply, m.err
}

func (m *scriptedModel) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type stubImages struct {
	err error
}

func (s *stubImages) Generate(ctx context.Context, label string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "data:image/png;base64,aW1n", nil
}

type unavailableStateRepository struct{}

func (unavailableStateRepository) Load(ctx context.Context, namespace string) (*domain.AppState, error) {
	return nil, errors.New("mongo: server selection timeout")
}

func (unavailableStateRepository) Save(ctx context.Context, namespace string, state domain.AppState) error {
	return errors.New("mongo: server selection timeout")
}

type testEnv struct {
	app   *fiber.App
	model *scriptedModel
	redis *miniredis.Miniredis
}

func newTestEnv(t *testing.T, model domain.TextModel, images domain.ImageGenerator) *testEnv {
	t.Helper()
	return newTestEnvWithRegistry(t, store.NewRegistry(nil), model, images)
}

func newTestEnvWithRegistry(t *testing.T, registry *store.Registry, model domain.TextModel, images domain.ImageGenerator) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })
	t.Cleanup(func() { _ = registry.Close(context.Background()) })

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", BodyLimitMB: 4, IdempotencyTTL: time.Minute},
		JWT:    config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Text:   config.TextConfig{Provider: config.ProviderOpenRouter},
	}

	app := NewApp(AppDependencies{
		Config:         cfg,
		Registry:       registry,
		RedisClient:    redisClient,
		TextModel:      model,
		ImageGenerator: images,
	})

	env := &testEnv{app: app, redis: mr}
	if m, ok := model.(*scriptedModel); ok {
		env.model = m
	}
	return env
}

func (e *testEnv) do(t *testing.T, method, path, token, body string, headers ...string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (e *testEnv) session(t *testing.T) string {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/v1/sessions", "", "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var out struct {
		Data service.Session `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotEmpty(t, out.Data.Token)
	return out.Data.Token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	resp, body := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")
}

func TestSessionRequired(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	resp, _ := env.do(t, http.MethodGet, "/v1/plan", "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlanFlow(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: "```json\n" + planJSON + "\n```"}, &stubImages{})
	token := env.session(t)

	resp, _ := env.do(t, http.MethodGet, "/v1/plan", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/v1/plan/generate", token, profileJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var generated struct {
		Success bool `json:"success"`
		Data    struct {
			UserData    domain.UserProfile `json:"userData"`
			FitnessPlan domain.FitnessPlan `json:"fitnessPlan"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &generated))
	assert.True(t, generated.Success)
	assert.Equal(t, "Asha", generated.Data.UserData.Name)
	assert.Equal(t, "Goblet Squat", generated.Data.FitnessPlan.WorkoutPlan.WeeklySchedule[0].Exercises[0].Name)
	assert.Equal(t, domain.FlexString("3"), generated.Data.FitnessPlan.WorkoutPlan.WeeklySchedule[0].Exercises[0].Sets)

	resp, body = env.do(t, http.MethodGet, "/v1/plan/summary", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary struct {
		Data service.PlanSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &summary))
	require.NotNil(t, summary.Data.Stats)
	assert.Equal(t, 24.22, summary.Data.Stats.BMI)
	assert.Equal(t, "Normal", summary.Data.Stats.BMICategory)
	assert.Equal(t, "weight loss", summary.Data.Stats.Goal)
	assert.Equal(t, "Keep going.", summary.Data.Quote)

	resp, body = env.do(t, http.MethodGet, "/v1/plan/narration?section=workout", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Here is your workout plan. Full body three times a week. ")

	resp, _ = env.do(t, http.MethodGet, "/v1/plan/narration?section=sleep", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/v1/plan/export", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Asha_Fitness_Plan.pdf")
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))

	resp, _ = env.do(t, http.MethodPost, "/v1/plan/export", token, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, "archive needs file storage")

	resp, _ = env.do(t, http.MethodDelete, "/v1/plan", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/v1/plan", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerateUpstreamFailureKeepsPlanEmpty(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer upstream.Close()

	env := newTestEnv(t, service.NewOpenRouterModel("key", "model", upstream.URL), &stubImages{})
	token := env.session(t)

	resp, body := env.do(t, http.MethodPost, "/v1/plan/generate", token, profileJSON)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Contains(t, string(body), "Failed to generate fitness plan. Please try again.")

	resp, body = env.do(t, http.MethodGet, "/v1/state", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var blob domain.PersistedState
	require.NoError(t, json.Unmarshal(body, &blob))
	assert.Nil(t, blob.State.FitnessPlan)
	require.NotNil(t, blob.State.UserData)
	assert.Equal(t, "Asha", blob.State.UserData.Name)
}

func TestGenerateRejectsInvalidProfile(t *testing.T) {
	model := &scriptedModel{reply: planJSON}
	env := newTestEnv(t, model, &stubImages{})
	token := env.session(t)

	resp, body := env.do(t, http.MethodPost, "/v1/plan/generate", token, `{"name":"Asha","age":8}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "age")
	assert.Equal(t, 0, model.count())

	resp, _ = env.do(t, http.MethodPost, "/v1/plan/regenerate", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateIsIdempotentPerCorrelationID(t *testing.T) {
	model := &scriptedModel{reply: planJSON}
	env := newTestEnv(t, model, &stubImages{})
	token := env.session(t)

	resp, first := env.do(t, http.MethodPost, "/v1/plan/generate", token, profileJSON, "X-Correlation-ID", "req-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		for _, key := range env.redis.Keys() {
			if strings.HasPrefix(key, "idempotency:") {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)

	resp, second := env.do(t, http.MethodPost, "/v1/plan/generate", token, profileJSON, "X-Correlation-ID", "req-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("X-Idempotent-Replay"))
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, 1, model.count())
}

func TestSavedPlansFlow(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	token := env.session(t)

	resp, _ := env.do(t, http.MethodPost, "/v1/saved-plans", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "nothing to save yet")

	resp, _ = env.do(t, http.MethodPost, "/v1/plan/generate", token, profileJSON)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/v1/saved-plans", token, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = env.do(t, http.MethodDelete, "/v1/plan", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/v1/saved-plans", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Data  []domain.SavedPlanEntry `json:"data"`
		Count int                     `json:"count"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Asha", list.Data[0].UserData.Name)
	assert.False(t, list.Data[0].SavedAt.IsZero())

	resp, _ = env.do(t, http.MethodPost, "/v1/saved-plans/0/load", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = env.do(t, http.MethodGet, "/v1/plan", token, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/v1/saved-plans/3", token, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = env.do(t, http.MethodDelete, "/v1/saved-plans/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodDelete, "/v1/saved-plans/0", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(body))
}

func TestThemeAndStateBlob(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	token := env.session(t)

	resp, body := env.do(t, http.MethodPost, "/v1/theme/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":{"darkMode":true}}`, string(body))

	resp, body = env.do(t, http.MethodPost, "/v1/theme/toggle", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":{"darkMode":false}}`, string(body))

	resp, _ = env.do(t, http.MethodPut, "/v1/theme", token, `{"darkMode":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/v1/state", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"state":{"userData":null,"fitnessPlan":null,"darkMode":true,"savedPlans":[]}}`, string(body))

	resp, _ = env.do(t, http.MethodPut, "/v1/state", token, `{"state":{"userData":null,"fitnessPlan":{"workoutPlan":{"weeklySchedule":[{"exercises":[]}]}},"darkMode":false,"savedPlans":[]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "a day without a name is rejected")

	resp, _ = env.do(t, http.MethodPut, "/v1/state", token, `{"state":{"darkMode":false,"savedPlans":[]}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	otherToken := env.session(t)
	resp, body = env.do(t, http.MethodGet, "/v1/state", otherToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"darkMode":false`)
}

func TestSavePlanRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	token := env.session(t)

	badProfile := strings.Replace(profileJSON, `"age":31`, `"age":400`, 1)
	resp, body := env.do(t, http.MethodPost, "/v1/saved-plans", token, `{"userData":`+badProfile+`,"fitnessPlan":`+planJSON+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodPost, "/v1/saved-plans", token, `{"userData":`+profileJSON+`,"fitnessPlan":`+planJSON+`}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = env.do(t, http.MethodGet, "/v1/saved-plans", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"count":1`)
}

func TestPutStateRejectsInvalidProfile(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	token := env.session(t)

	badProfile := strings.Replace(profileJSON, `"weight":70`, `"weight":0`, 1)
	resp, _ := env.do(t, http.MethodPut, "/v1/state", token, `{"state":{"userData":`+badProfile+`,"darkMode":false,"savedPlans":[]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/v1/state", token, `{"state":{"userData":null,"darkMode":false,"savedPlans":[{"id":"01","userData":`+badProfile+`,"fitnessPlan":`+planJSON+`}]}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/v1/state", token, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"state":{"userData":null,"fitnessPlan":null,"darkMode":false,"savedPlans":[]}}`, string(body))
}

func TestStateLoadFailureIsUnavailable(t *testing.T) {
	registry := store.NewRegistry(unavailableStateRepository{})
	env := newTestEnvWithRegistry(t, registry, &scriptedModel{reply: planJSON}, &stubImages{})
	token := env.session(t)

	resp, body := env.do(t, http.MethodPost, "/v1/theme/toggle", token, "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, string(body), `"success":false`)
	assert.Zero(t, registry.Len(), "a failed load is not cached")

	resp, _ = env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerateImage(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})

	resp, body := env.do(t, http.MethodPost, "/api/generate-image", "", `{"prompt":"Goblet Squat"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"imageUrl":"data:image/png;base64,aW1n"}`, string(body))

	resp, body = env.do(t, http.MethodPost, "/api/generate-image", "", `{"prompt":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"error"`)
}

func TestGenerateImageMirrorsUpstreamStatus(t *testing.T) {
	failing := &stubImages{err: domain.NewImageGenerationError(domain.ErrNetwork, http.StatusServiceUnavailable, "Hugging Face error: loading")}
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, failing)

	resp, body := env.do(t, http.MethodPost, "/api/generate-image", "", `{"prompt":"Plank"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Hugging Face error: loading"}`, string(body))

	unconfigured := &stubImages{err: domain.NewImageGenerationError(domain.ErrConfiguration, http.StatusInternalServerError, "API key not configured")}
	env = newTestEnv(t, &scriptedModel{reply: planJSON}, unconfigured)
	resp, body = env.do(t, http.MethodPost, "/api/generate-image", "", `{"prompt":"Plank"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"API key not configured"}`, string(body))

	plain := &stubImages{err: errors.New("socket closed")}
	env = newTestEnv(t, &scriptedModel{reply: planJSON}, plain)
	resp, _ = env.do(t, http.MethodPost, "/api/generate-image", "", `{"prompt":"Plank"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t, &scriptedModel{reply: planJSON}, &stubImages{})
	resp, body := env.do(t, http.MethodGet, "/v1/quote", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"data":{"quote":"Keep going."}}`, string(body))
}

package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// LangchainModel implements domain.TextModel on top of a langchaingo provider.
// The provider client is created on first use so a missing key fails the
// request rather than startup.
type LangchainModel struct {
	provider string
	apiKey   string
	model    string
	baseURL  string

	once sync.Once
	llm  llms.Model
	err  error
}

// NewLangchainModel creates a text model for the gemini or openai provider
func NewLangchainModel(provider, apiKey, model, baseURL string) *LangchainModel {
	return &LangchainModel{
		provider: provider,
		apiKey:   apiKey,
		model:    model,
		baseURL:  baseURL,
	}
}

// NewTextModel selects the text model for the configured provider
func NewTextModel(cfg config.TextConfig) domain.TextModel {
	switch cfg.Provider {
	case config.ProviderGemini, config.ProviderOpenAI:
		return NewLangchainModel(cfg.Provider, cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return NewOpenRouterModel(cfg.APIKey, cfg.Model, cfg.BaseURL)
	}
}

// Complete sends a single prompt and returns the completion text
func (m *LangchainModel) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("text-model").Start(ctx, "langchain.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", m.provider),
		attribute.String("llm.model", m.model),
	)

	if m.apiKey == "" {
		return "", domain.NewGenerationError(domain.ErrConfiguration, 0, "%s API key not configured", m.provider)
	}

	m.once.Do(func() {
		m.llm, m.err = m.connect(context.Background())
	})
	if m.err != nil {
		return "", domain.NewGenerationError(domain.ErrConfiguration, 0, "failed to initialise %s client: %w", m.provider, m.err)
	}

	text, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt)
	if err != nil {
		span.RecordError(err)
		return "", domain.NewGenerationError(domain.ErrNetwork, 0, "%s completion failed: %w", m.provider, err)
	}
	return text, nil
}

func (m *LangchainModel) connect(ctx context.Context) (llms.Model, error) {
	switch m.provider {
	case config.ProviderGemini:
		return googleai.New(ctx,
			googleai.WithAPIKey(m.apiKey),
			googleai.WithDefaultModel(m.model),
		)
	case config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(m.apiKey),
			openai.WithModel(m.model),
		}
		if m.baseURL != "" {
			opts = append(opts, openai.WithBaseURL(m.baseURL))
		}
		return openai.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q", m.provider)
	}
}

package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// FallbackQuote is shown whenever no quote can be generated
const FallbackQuote = "Your only limit is you. Push harder today!"

const quoteCacheTTL = time.Hour

// QuoteService produces the daily motivational quote
type QuoteService struct {
	model domain.TextModel
	cache domain.CacheRepository
}

// NewQuoteService creates a new quote service. cache may be nil.
func NewQuoteService(model domain.TextModel, cache domain.CacheRepository) *QuoteService {
	return &QuoteService{
		model: model,
		cache: cache,
	}
}

// Quote returns a short motivational quote. It never fails: any model error
// yields FallbackQuote. refresh bypasses the cached quote.
func (s *QuoteService) Quote(ctx context.Context, refresh bool) string {
	if !refresh && s.cache != nil {
		if cached, err := s.cache.GetQuote(ctx); err == nil && cached != "" {
			return cached
		}
	}

	if s.model == nil {
		return FallbackQuote
	}

	text, err := s.model.Complete(ctx, quotePrompt)
	if err != nil {
		log.Printf("Error generating quote: %v", err)
		return FallbackQuote
	}

	quote := strings.Trim(strings.TrimSpace(text), `"`)
	if quote == "" {
		return FallbackQuote
	}

	if s.cache != nil {
		_ = s.cache.SetQuote(ctx, quote, quoteCacheTTL)
	}
	return quote
}

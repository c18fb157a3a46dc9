package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/mansoorceksport/fitcoach/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuoteCache(t *testing.T) *repository.RedisCacheRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return repository.NewRedisCacheRepository(client)
}

func TestQuoteServiceCachesQuote(t *testing.T) {
	model := &fakeModel{reply: "  \"Sweat now, shine later.\"\n"}
	svc := NewQuoteService(model, newQuoteCache(t))

	assert.Equal(t, "Sweat now, shine later.", svc.Quote(context.Background(), false))
	assert.Equal(t, "Sweat now, shine later.", svc.Quote(context.Background(), false))
	assert.Equal(t, 1, model.calls())

	model.reply = "Fresh start."
	assert.Equal(t, "Fresh start.", svc.Quote(context.Background(), true))
	assert.Equal(t, 2, model.calls())
}

func TestQuoteServiceFallback(t *testing.T) {
	svc := NewQuoteService(&fakeModel{err: errors.New("quota exceeded")}, nil)
	assert.Equal(t, FallbackQuote, svc.Quote(context.Background(), false))

	svc = NewQuoteService(&fakeModel{reply: "   "}, nil)
	assert.Equal(t, FallbackQuote, svc.Quote(context.Background(), false))

	svc = NewQuoteService(nil, nil)
	assert.Equal(t, FallbackQuote, svc.Quote(context.Background(), false))
}

func TestQuoteServiceDoesNotCacheFallback(t *testing.T) {
	cache := newQuoteCache(t)
	svc := NewQuoteService(&fakeModel{err: errors.New("down")}, cache)
	assert.Equal(t, FallbackQuote, svc.Quote(context.Background(), false))

	cached, err := cache.GetQuote(context.Background())
	require.NoError(t, err)
	assert.Empty(t, cached)
}

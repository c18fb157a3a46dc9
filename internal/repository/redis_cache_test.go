package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheStateRoundTrip(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisCacheRepository(client)
	ctx := context.Background()

	got, err := cache.GetState(ctx, "ns-1")
	require.NoError(t, err)
	assert.Nil(t, got, "miss returns nil")

	state := sampleState()
	require.NoError(t, cache.SetState(ctx, "ns-1", state, time.Minute))
	assert.True(t, mr.Exists("state:ns-1"))

	got, err = cache.GetState(ctx, "ns-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DarkMode)
	assert.Equal(t, "Asha", got.UserData.Name)
	require.Len(t, got.FitnessPlan.DietPlan.Meals, 2)
	assert.Equal(t, "lunch", got.FitnessPlan.DietPlan.Meals[0].Name)
	assert.Equal(t, "breakfast", got.FitnessPlan.DietPlan.Meals[1].Name)

	require.NoError(t, cache.InvalidateState(ctx, "ns-1"))
	got, err = cache.GetState(ctx, "ns-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheStateExpires(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisCacheRepository(client)
	ctx := context.Background()

	require.NoError(t, cache.SetState(ctx, "ns-2", sampleState(), time.Minute))
	mr.FastForward(2 * time.Minute)

	got, err := cache.GetState(ctx, "ns-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisCacheCorruptEntry(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisCacheRepository(client)

	require.NoError(t, mr.Set("state:bad", "{not json"))
	_, err := cache.GetState(context.Background(), "bad")
	assert.Error(t, err)
}

func TestRedisCacheQuote(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisCacheRepository(client)
	ctx := context.Background()

	quote, err := cache.GetQuote(ctx)
	require.NoError(t, err)
	assert.Empty(t, quote)

	require.NoError(t, cache.SetQuote(ctx, "Small steps every day.", time.Hour))
	quote, err = cache.GetQuote(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Small steps every day.", quote)
	assert.Equal(t, time.Hour, mr.TTL(quoteKey))
}

func TestRedisCacheGenericMiss(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewRedisCacheRepository(client)

	var dest map[string]string
	assert.ErrorIs(t, cache.Get(context.Background(), "absent", &dest), ErrCacheMiss)
	assert.NoError(t, cache.Delete(context.Background()))
}

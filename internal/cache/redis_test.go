package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cucharaita/storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and returns a RedisCache instance
func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, 10*time.Minute), mr
}

func testCart(sessionID string) *domain.Cart {
	return &domain.Cart{
		SessionID: sessionID,
		Lines: []domain.CartLine{
			{ID: "l1", ProductID: 1, Name: "Tarta de queso", UnitPrice: decimal.RequireFromString("25.50"), Quantity: 2},
		},
		CouponCode: "DULCE10",
	}
}

func TestGet_Success(t *testing.T) {
	c, mr := setupTestRedis(t)

	data, _ := json.Marshal(testCart("s1"))
	mr.Set(cartKey("s1"), string(data))

	got, err := c.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.SessionID)
	require.Len(t, got.Lines, 1)
	assert.True(t, decimal.RequireFromString("25.5").Equal(got.Lines[0].UnitPrice))
	assert.Equal(t, "DULCE10", got.CouponCode)
}

func TestGet_CacheMiss(t *testing.T) {
	c, _ := setupTestRedis(t)

	got, err := c.Get(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Nil(t, got)
}

func TestGet_InvalidJSON(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Set(cartKey("bad"), "{not json")

	_, err := c.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func TestSet_AppliesTTLWithJitter(t *testing.T) {
	c, mr := setupTestRedis(t)

	require.NoError(t, c.Set(context.Background(), "s1", testCart("s1")))

	ttl := mr.TTL(cartKey("s1"))
	assert.GreaterOrEqual(t, ttl, 10*time.Minute)
	assert.Less(t, ttl, 15*time.Minute)
}

func TestSet_Expires(t *testing.T) {
	c, mr := setupTestRedis(t)
	require.NoError(t, c.Set(context.Background(), "s1", testCart("s1")))

	mr.FastForward(20 * time.Minute)

	_, err := c.Get(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestDelete(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "s1", testCart("s1")))

	require.NoError(t, c.Delete(ctx, "s1"))
	assert.False(t, mr.Exists(cartKey("s1")))

	// deleting a missing key is fine
	assert.NoError(t, c.Delete(ctx, "s1"))
}

func TestProducts_RoundTripAndInvalidate(t *testing.T) {
	c, mr := setupTestRedis(t)
	ctx := context.Background()

	products := []domain.Product{{ID: 1, Name: "Tarta de queso", Price: decimal.NewFromInt(25)}}
	require.NoError(t, c.SetProducts(ctx, "all", products))
	require.NoError(t, c.SetProducts(ctx, "category:2", nil))
	mr.Set(cartKey("s1"), "{}")

	got, err := c.GetProducts(ctx, "all")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tarta de queso", got[0].Name)

	require.NoError(t, c.DeleteProducts(ctx))
	_, err = c.GetProducts(ctx, "all")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.True(t, mr.Exists(cartKey("s1")))
}

func TestGet_ServerDown(t *testing.T) {
	c, mr := setupTestRedis(t)
	mr.Close()

	_, err := c.Get(context.Background(), "s1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

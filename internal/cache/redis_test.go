package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fleet-control/internal/config"
	"github.com/magabrotheeeer/fleet-control/internal/models"
)

func setupTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return &Cache{Db: client}, mr
}

func TestSetAndGet(t *testing.T) {
	cache, _ := setupTestCache(t)

	drivers := []*models.Driver{
		{ID: 1, TenantUID: "uid-1", Name: "Иванов Иван", Status: models.DriverAvailable},
		{ID: 2, TenantUID: "uid-1", Name: "Петров Петр", Status: models.DriverOnTrip},
	}

	err := cache.Set("drivers:uid-1", drivers, time.Minute)
	require.NoError(t, err)

	var got []*models.Driver
	found, err := cache.Get("drivers:uid-1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	require.Len(t, got, 2)
	assert.Equal(t, "Иванов Иван", got[0].Name)
	assert.Equal(t, models.DriverOnTrip, got[1].Status)
}

func TestGetNotFound(t *testing.T) {
	cache, _ := setupTestCache(t)

	var got []*models.Driver
	found, err := cache.Get("drivers:missing", &got)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestSetExpiration(t *testing.T) {
	cache, mr := setupTestCache(t)

	err := cache.Set("trips:uid-1", []int{1, 2, 3}, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	var got []int
	found, err := cache.Get("trips:uid-1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache, _ := setupTestCache(t)

	err := cache.Set("vehicles:uid-1", []int{1}, time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("vehicles:uid-1")
	require.NoError(t, err)

	var got []int
	found, err := cache.Get("vehicles:uid-1", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetInvalidJSON(t *testing.T) {
	cache, mr := setupTestCache(t)

	require.NoError(t, mr.Set("broken", "{not json"))

	var got []*models.Driver
	found, err := cache.Get("broken", &got)
	assert.Error(t, err)
	assert.False(t, found)
}

func TestInitServerInvalidAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := InitServer(ctx, config.RedisConnection{
		AddressRedis: "127.0.0.1:1",
		DialTimeout:  100 * time.Millisecond,
		TimeoutRedis: 100 * time.Millisecond,
	})
	assert.Error(t, err)
}

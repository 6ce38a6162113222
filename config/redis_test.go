package config

import (
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRedis(t *testing.T) {
	t.Helper()
	ResetConfigForTest()
	ResetRedisClientForTest()
	t.Cleanup(func() {
		ResetConfigForTest()
		ResetRedisClientForTest()
	})
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_PASSWORD", "pw")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REDIS_PING_TIMEOUT", "")

	rc := loadRedisConfig()
	assert.True(t, rc.Enabled)
	assert.Equal(t, "cache:6380", rc.Addr)
	assert.Equal(t, "pw", rc.Password)
	assert.Equal(t, 3, rc.DB)
	assert.Equal(t, 2*time.Second, rc.PingTimeout)
}

func TestLoadRedisConfig_Defaults(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_DB", "not-a-number")

	rc := loadRedisConfig()
	assert.False(t, rc.Enabled)
	assert.Equal(t, "localhost:6379", rc.Addr)
	assert.Zero(t, rc.DB)
}

func TestConnectRedis_DisabledByDefault(t *testing.T) {
	t.Setenv("APPENV", "")
	t.Setenv("REDIS_ENABLED", "")
	resetRedis(t)

	rdb, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestConnectRedis_SkippedInTestEnv(t *testing.T) {
	t.Setenv("APPENV", "test")
	t.Setenv("REDIS_ENABLED", "true")
	resetRedis(t)

	rdb, err := ConnectRedis()
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestDialRedis_Unreachable(t *testing.T) {
	rdb, err := dialRedis(RedisConfig{Addr: "127.0.0.1:1", PingTimeout: 200 * time.Millisecond})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:1")
	assert.Nil(t, rdb)
}

func TestConnectRedis_ConcurrentCalls(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "false")
	resetRedis(t)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rdb, err := ConnectRedis()
			assert.NoError(t, err)
			assert.Nil(t, rdb)
		}()
	}
	wg.Wait()
}

func TestRedisTestHelpers_SetAndReset(t *testing.T) {
	client, _ := redismock.NewClientMock()
	defer client.Close()

	SetRedisClientForTest(client)
	assert.Equal(t, client, GetRedisClient())

	ResetRedisClientForTest()
	assert.Nil(t, GetRedisClient())
}

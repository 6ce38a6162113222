package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig selects the Redis instance holding hot sessions and rate limit
// counters. Redis is opt-in; with Enabled false the portal keeps sessions in
// the database only.
type RedisConfig struct {
	Enabled     bool          `json:"enabled"`
	Addr        string        `json:"addr"`
	Password    string        `json:"-"`
	DB          int           `json:"db"`
	PingTimeout time.Duration `json:"pingtimeout"`
}

func loadRedisConfig() RedisConfig {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return RedisConfig{
		Enabled:     os.Getenv("REDIS_ENABLED") == "true",
		Addr:        getEnv("REDIS_ADDR", "localhost:6379"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DB:          db,
		PingTimeout: parseDuration(os.Getenv("REDIS_PING_TIMEOUT"), 2*time.Second),
	}
}

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// ConnectRedis dials the session Redis once. A disabled configuration, or
// APPENV=test, yields a nil client and no error.
func ConnectRedis() (*redis.Client, error) {
	var err error
	redisOnce.Do(func() {
		cfg := LoadConfig()
		if cfg.IsTest() || !cfg.Redis.Enabled {
			return
		}
		redisClient, err = dialRedis(cfg.Redis)
	})
	return redisClient, err
}

func dialRedis(rc RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), rc.PingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", rc.Addr, err)
	}
	log.Printf("Session store on redis %s db %d", rc.Addr, rc.DB)
	return rdb, nil
}

// GetRedisClient returns the session Redis, nil when sessions live in the database only.
func GetRedisClient() *redis.Client {
	return redisClient
}

// SetRedisClientForTest injects a client, typically a redismock client.
func SetRedisClientForTest(client *redis.Client) {
	redisClient = client
}

// ResetRedisClientForTest resets the singleton so ConnectRedis runs again.
func ResetRedisClientForTest() {
	redisClient = nil
	redisOnce = sync.Once{}
}

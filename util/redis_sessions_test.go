package util

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/model"
	"github.com/stretchr/testify/assert"
)

var sessionUser = model.User{ID: "7", Username: "doc", Email: "Doc@Example.com", Role: model.RoleDoctor}

func mockRedis(t *testing.T) redismock.ClientMock {
	t.Helper()
	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(db)
	t.Cleanup(func() {
		config.SetRedisClientForTest(nil)
		_ = db.Close()
	})
	return mock
}

func TestStoreSession(t *testing.T) {
	mock := mockRedis(t)
	blob, _ := json.Marshal(sessionUser)
	ttl := 24 * time.Hour

	mock.ExpectSet("session:tok-1", string(blob), ttl).SetVal("OK")
	mock.ExpectSAdd("user_sessions:doc@example.com", "tok-1").SetVal(1)
	mock.ExpectExpire("user_sessions:doc@example.com", ttl).SetVal(true)

	assert.NoError(t, StoreSession(context.Background(), "tok-1", sessionUser, ttl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSession_SAddError(t *testing.T) {
	mock := mockRedis(t)
	blob, _ := json.Marshal(sessionUser)

	mock.ExpectSet("session:tok-1", string(blob), time.Hour).SetVal("OK")
	mock.ExpectSAdd("user_sessions:doc@example.com", "tok-1").SetErr(errors.New("redis connection error"))

	err := StoreSession(context.Background(), "tok-1", sessionUser, time.Hour)
	assert.EqualError(t, err, "redis connection error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSession(t *testing.T) {
	mock := mockRedis(t)
	blob, _ := json.Marshal(sessionUser)

	mock.ExpectGet("session:tok-1").SetVal(string(blob))
	mock.ExpectGet("session:gone").RedisNil()

	u, found, err := LoadSession(context.Background(), "tok-1")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, sessionUser, u)

	_, found, err = LoadSession(context.Background(), "gone")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadSession_CorruptValue(t *testing.T) {
	mock := mockRedis(t)
	mock.ExpectGet("session:tok-1").SetVal("{not json")

	_, found, err := LoadSession(context.Background(), "tok-1")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestRemoveSession(t *testing.T) {
	mock := mockRedis(t)
	mock.ExpectDel("session:tok-1").SetVal(1)
	mock.ExpectEval(removeMemberScript, []string{"user_sessions:doc@example.com"}, "tok-1").SetVal(int64(1))

	assert.NoError(t, RemoveSession(context.Background(), "tok-1", "doc@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveSession_DelError(t *testing.T) {
	mock := mockRedis(t)
	mock.ExpectDel("session:tok-1").SetErr(errors.New("boom"))

	assert.Error(t, RemoveSession(context.Background(), "tok-1", "doc@example.com"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountUserSessions(t *testing.T) {
	mock := mockRedis(t)
	mock.ExpectSCard("user_sessions:doc@example.com").SetVal(2)

	n, err := CountUserSessions(context.Background(), "DOC@example.com")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestNilRedisClient_Behavior(t *testing.T) {
	config.SetRedisClientForTest(nil)
	ctx := context.Background()

	assert.NoError(t, StoreSession(ctx, "tok", sessionUser, time.Hour))
	_, found, err := LoadSession(ctx, "tok")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, RemoveSession(ctx, "tok", "doc@example.com"))
	n, err := CountUserSessions(ctx, "doc@example.com")
	assert.NoError(t, err)
	assert.Zero(t, n)
}

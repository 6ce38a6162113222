package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/model"
	"github.com/redis/go-redis/v9"
)

// removeMemberScript drops a token from the per-user set and deletes the set
// once it is empty.
const removeMemberScript = `
	local removed = redis.call('SREM', KEYS[1], ARGV[1])
	if removed > 0 then
		local count = redis.call('SCARD', KEYS[1])
		if count == 0 then
			redis.call('DEL', KEYS[1])
		end
	end
	return removed
`

func sessionKey(tokenID string) string {
	return "session:" + tokenID
}

func userSessionsKey(email string) string {
	return "user_sessions:" + strings.ToLower(strings.TrimSpace(email))
}

// StoreSession writes the session record under session:<id> with ttl and adds
// the id to the user's session set. The set's expiry is pushed out to ttl on
// every login. Without Redis this is a no-op.
func StoreSession(ctx context.Context, tokenID string, user model.User, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	blob, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := rdb.Set(ctx, sessionKey(tokenID), string(blob), ttl).Err(); err != nil {
		return err
	}
	setKey := userSessionsKey(user.Email)
	if err := rdb.SAdd(ctx, setKey, tokenID).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, setKey, ttl).Err()
}

// LoadSession returns the cached session record. found is false on a miss or
// when Redis is not configured.
func LoadSession(ctx context.Context, tokenID string) (user model.User, found bool, err error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return model.User{}, false, nil
	}
	raw, err := rdb.Get(ctx, sessionKey(tokenID)).Result()
	if errors.Is(err, redis.Nil) {
		return model.User{}, false, nil
	}
	if err != nil {
		return model.User{}, false, err
	}
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return model.User{}, false, fmt.Errorf("decode session: %w", err)
	}
	return user, true, nil
}

// RemoveSession deletes the cached record and its set membership. Removing a
// session that is already gone is not an error.
func RemoveSession(ctx context.Context, tokenID, email string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(tokenID)).Err(); err != nil {
		return err
	}
	if email == "" {
		return nil
	}
	return rdb.Eval(ctx, removeMemberScript, []string{userSessionsKey(email)}, tokenID).Err()
}

// CountUserSessions reports how many live sessions the user holds.
func CountUserSessions(ctx context.Context, email string) (int64, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return 0, nil
	}
	return rdb.SCard(ctx, userSessionsKey(email)).Result()
}

package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"kycgate/pkg/sentinel"
)

const (
	redisUserPrefix        = "kycgate:user:"
	redisEmailPrefix       = "kycgate:email:"
	redisReservationPrefix = "kycgate:reservation:"

	// Stale reservations expire on their own so a crashed instance cannot
	// block an email address forever.
	reservationTTL = 2 * time.Minute
)

// reserveScript checks the email index and claims the reservation in one
// server-side step. KEYS[1] is the email index key, KEYS[2] the reservation
// key, ARGV[1] the reservation value, ARGV[2] the TTL in milliseconds.
// Returns 1 on success, 0 when the email is taken or already reserved.
var reserveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
if redis.call("SET", KEYS[2], ARGV[1], "NX", "PX", ARGV[2]) then
	return 1
end
return 0
`)

// commitScript finalizes a registration only while its reservation still
// exists, so a caller whose reservation expired cannot clobber the winner.
// KEYS[1] is the reservation key, KEYS[2] the user record key, KEYS[3] the
// email index key. ARGV[1] is the record payload, ARGV[2] the user id.
// Returns 1 on success, 0 when the reservation is gone.
var commitScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
redis.call("SET", KEYS[2], ARGV[1])
redis.call("SET", KEYS[3], ARGV[2])
redis.call("DEL", KEYS[1])
return 1
`)

// RedisUserStore persists user records in Redis. Reservation and commit each
// run as a single Lua script, so the check and write are atomic on the server
// and concurrent attempts on the same address resolve to exactly one winner.
type RedisUserStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed user store.
func NewRedis(client *redis.Client) *RedisUserStore {
	return &RedisUserStore{client: client}
}

func (s *RedisUserStore) Reserve(ctx context.Context, email string) error {
	key := normalizeEmail(email)
	keys := []string{redisEmailPrefix + key, redisReservationPrefix + key}
	n, err := reserveScript.Run(ctx, s.client, keys, "1", reservationTTL.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("reserve email: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("email %s: %w", email, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisUserStore) Commit(ctx context.Context, record *UserRecord) error {
	if record == nil {
		return fmt.Errorf("user record is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}

	key := normalizeEmail(record.Email)
	keys := []string{
		redisReservationPrefix + key,
		redisUserPrefix + record.ID.String(),
		redisEmailPrefix + key,
	}
	n, err := commitScript.Run(ctx, s.client, keys, payload, record.ID.String()).Int64()
	if err != nil {
		return fmt.Errorf("commit user record: %w", err)
	}
	if n == 0 {
		// The reservation expired or was released; the email may belong to
		// someone else by now.
		return fmt.Errorf("reservation lost for %s: %w", record.Email, sentinel.ErrConflict)
	}
	return nil
}

func (s *RedisUserStore) Rollback(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, redisReservationPrefix+normalizeEmail(email)).Err(); err != nil {
		return fmt.Errorf("release reservation: %w", err)
	}
	return nil
}

func (s *RedisUserStore) FindByID(ctx context.Context, id uuid.UUID) (*UserRecord, error) {
	payload, err := s.client.Get(ctx, redisUserPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("user %s: %w", id, sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	var record UserRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal user record: %w", err)
	}
	return &record, nil
}

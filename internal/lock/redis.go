package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"hotelbooking/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a RoomLocker shared by every API instance pointing at the same Redis. A held
// lock is re-extended every ttl/3 until it is released, so ttl only bounds how long a
// crashed holder keeps the room.
type Redis struct {
	client        *redis.Client
	ttl           time.Duration
	retryInterval time.Duration
	waitTimeout   time.Duration
	logger        zerolog.Logger
}

// NewRedisClient creates a client from the redis section of the config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedis(client *redis.Client, cfg config.LockConfig, logger zerolog.Logger) *Redis {
	return &Redis{
		client:        client,
		ttl:           cfg.TTL,
		retryInterval: cfg.RetryInterval,
		waitTimeout:   cfg.WaitTimeout,
		logger:        logger.With().Str("component", "room-lock").Logger(),
	}
}

func roomKey(roomID int64) string {
	return fmt.Sprintf("hotel:room_lock:%d", roomID)
}

func (r *Redis) Lock(ctx context.Context, roomID int64) (func(), error) {
	key := roomKey(roomID)
	token := uuid.NewString()
	deadline := time.Now().Add(r.waitTimeout)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire room lock %d: %w", roomID, err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrTimeout
		}

		timer := time.NewTimer(r.retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stop := make(chan struct{})
	go r.keepAlive(roomID, key, token, stop)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			// The request context may already be cancelled; release must still happen.
			releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
				r.logger.Warn().Err(err).Int64("room_id", roomID).Msg("release room lock")
			}
		})
	}, nil
}

func (r *Redis) keepAlive(roomID int64, key, token string, stop <-chan struct{}) {
	interval := r.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := refreshScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			r.logger.Warn().Err(err).Int64("room_id", roomID).Msg("refresh room lock")
			continue
		}
		if n == 0 {
			r.logger.Error().Int64("room_id", roomID).Msg("room lock lost before release")
			return
		}
	}
}

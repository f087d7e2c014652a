package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 待确认指令缓存的键前缀
const PendingCommandKeyPrefix = "nli:pending:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type Redis struct {
	Client *redis.Client
}

func NewRedis(config RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("连接 Redis 失败: %w", err)
	}

	log.Info().Str("addr", config.Addr).Msg("Redis 连接成功")

	return &Redis{
		Client: rdb,
	}, nil
}

func (r *Redis) Close() error {
	return r.Client.Close()
}

// GetPendingCommand 读取待确认指令，键不存在返回空串而不是错误
func (r *Redis) GetPendingCommand(ctx context.Context, key string) (string, error) {
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

// SetPendingCommand 写入待确认指令，到期自动清除
func (r *Redis) SetPendingCommand(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return r.Client.Set(ctx, key, payload, ttl).Err()
}

// DelPendingCommand 删除已消费的待确认指令
func (r *Redis) DelPendingCommand(ctx context.Context, key string) error {
	return r.Client.Del(ctx, key).Err()
}

package database

import (
	"context"
	"fmt"
	"time"

	"music_exam_backend/internal/config"
	"music_exam_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// InitRedis 连接失败时返回错误，由调用方决定是否降级
func InitRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 20
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		MinIdleConns: 2,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	rdb.AddHook(errorHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", rdb.Options().Addr, err)
	}

	logger.Log.Info("Redis connection established",
		zap.String("addr", rdb.Options().Addr),
		zap.Int("poolSize", poolSize))
	return rdb, nil
}

// errorHook 记录失败的命令；缓存未命中 (redis.Nil) 不算失败
type errorHook struct{}

func (errorHook) BeforeProcess(ctx context.Context, _ redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (errorHook) AfterProcess(_ context.Context, cmd redis.Cmder) error {
	if err := cmd.Err(); err != nil && err != redis.Nil {
		logger.Log.Debug("Redis command failed", zap.String("cmd", cmd.Name()), zap.Error(err))
	}
	return nil
}

func (errorHook) BeforeProcessPipeline(ctx context.Context, _ []redis.Cmder) (context.Context, error) {
	return ctx, nil
}

func (errorHook) AfterProcessPipeline(context.Context, []redis.Cmder) error {
	return nil
}

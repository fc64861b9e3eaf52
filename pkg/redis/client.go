package redis

import (
	"context"
	"fmt"
	"time"

	"clicklink-admin/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewClient 创建 Redis 客户端，host 为空时返回 nil 表示禁用缓存
func NewClient(cfg *config.Cache) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis连接失败: %v", err)
	}

	return client, nil
}

package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"glemora/internal/domain/model"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const productTTL = time.Minute

// 商品詳細の読み取りキャッシュ。外れても必ずDBに落ちる
type RedisProductCache struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisProductCache(addr string, password string, db int, log *zap.Logger) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisProductCache{client: client, log: log}, nil
}

func key(productID int64) string {
	return "product:" + strconv.FormatInt(productID, 10)
}

func (c *RedisProductCache) GetProduct(ctx context.Context, productID int64) (model.Product, bool) {
	raw, err := c.client.Get(ctx, key(productID)).Result()
	if err != nil {
		return model.Product{}, false
	}

	var p model.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.Product{}, false
	}
	return p, true
}

func (c *RedisProductCache) SetProduct(ctx context.Context, p model.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key(p.ID), data, productTTL).Err(); err != nil {
		c.log.Warn("product cache set failed", zap.Int64("product_id", p.ID), zap.Error(err))
	}
}

func (c *RedisProductCache) InvalidateProduct(ctx context.Context, productID int64) {
	if err := c.client.Del(ctx, key(productID)).Err(); err != nil {
		c.log.Warn("product cache del failed", zap.Int64("product_id", productID), zap.Error(err))
	}
}

func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 封装 go-redis 的 UniversalClient
type Client struct {
	client redis.UniversalClient
}

// NewClient 创建 Redis 客户端，addrs 为逗号分隔的地址列表，
// 单地址时为普通客户端，多地址时为集群客户端。
func NewClient(addrs string) (*Client, error) {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{client: client}, nil
}

// GetClient 暴露底层客户端，供需要 Pipeline 等高级能力的调用方使用
func (c *Client) GetClient() redis.UniversalClient {
	return c.client
}

// Close 关闭底层连接
func (c *Client) Close() error {
	return c.client.Close()
}

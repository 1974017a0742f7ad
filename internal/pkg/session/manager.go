package session

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "gateway:session:"
	sessionTTL       = 12 * time.Hour
)

// Manager 维护"用户 -> 推送网关节点"的会话映射，存储在 Redis 中。
// 用户的 WebSocket 连到哪个网关节点，消息就路由到哪个节点。
type Manager struct {
	client *goredis.Client
}

func NewManager(redisAddr string) *Manager {
	return &Manager{
		client: goredis.NewClient(&goredis.Options{Addr: redisAddr}),
	}
}

// SetUserGateway 记录用户当前所在的网关节点
func (m *Manager) SetUserGateway(ctx context.Context, userID, nodeID string) error {
	return m.client.Set(ctx, sessionKeyPrefix+userID, nodeID, sessionTTL).Err()
}

// GetUserGateway 查询用户所在的网关节点，离线时返回空串
func (m *Manager) GetUserGateway(ctx context.Context, userID string) (string, error) {
	nodeID, err := m.client.Get(ctx, sessionKeyPrefix+userID).Result()
	if err == goredis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session for user %s: %w", userID, err)
	}
	return nodeID, nil
}

// RemoveUserGateway 用户断开连接时清除会话
func (m *Manager) RemoveUserGateway(ctx context.Context, userID string) error {
	return m.client.Del(ctx, sessionKeyPrefix+userID).Err()
}

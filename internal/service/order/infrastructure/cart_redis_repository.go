package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"storefront/internal/pkg/apperrors"
	pkgredis "storefront/internal/pkg/redis"
	"storefront/internal/service/order/domain"
)

// RedisCartRepository 用 Redis hash 保存购物车，
// key 为 cart:<userID>，field 为商品 ID，value 为条目 JSON。
type RedisCartRepository struct {
	client *pkgredis.Client
}

func NewRedisCartRepository(client *pkgredis.Client) *RedisCartRepository {
	return &RedisCartRepository{client: client}
}

func cartKey(userID string) string {
	return fmt.Sprintf("cart:%s", userID)
}

// Get 读取整个购物车，购物车不存在时返回空车而不是 NotFound
func (r *RedisCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	fields, err := r.client.GetClient().HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to load cart", errors.WithStack(err))
	}

	cart := &domain.Cart{UserID: userID, Items: make([]domain.CartItem, 0, len(fields))}
	for productID, raw := range fields {
		var item domain.CartItem
		if err := json.Unmarshal([]byte(raw), &item); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDatabase, fmt.Sprintf("corrupted cart entry for product %s", productID), err)
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

// SetItem 写入或覆盖一个条目
func (r *RedisCartRepository) SetItem(ctx context.Context, userID string, item domain.CartItem) error {
	if item.ProductID == "" || item.Quantity <= 0 {
		return apperrors.New(apperrors.CodeValidation, "cart item requires a product id and positive quantity")
	}
	raw, err := json.Marshal(item)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInternal, "failed to encode cart item", err)
	}
	if err := r.client.GetClient().HSet(ctx, cartKey(userID), item.ProductID, raw).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to store cart item", errors.WithStack(err))
	}
	return nil
}

// RemoveItem 删除一个条目
func (r *RedisCartRepository) RemoveItem(ctx context.Context, userID, productID string) error {
	if err := r.client.GetClient().HDel(ctx, cartKey(userID), productID).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to remove cart item", errors.WithStack(err))
	}
	return nil
}

// Clear 清空购物车条目。结账成功后调用，购物车 key 整体删除即为空车。
func (r *RedisCartRepository) Clear(ctx context.Context, userID string) error {
	if err := r.client.GetClient().Del(ctx, cartKey(userID)).Err(); err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to clear cart", errors.WithStack(err))
	}
	return nil
}

package domain

import "context"

// OrderRepository 是订单聚合的持久化出站端口
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByPaymentIntentID(ctx context.Context, paymentIntentID string) (*Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)
}

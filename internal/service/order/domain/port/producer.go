package port

import (
	"context"

	"storefront/internal/service/order/domain"
)

// OrderEventProducer 是订单领域事件的出站端口
type OrderEventProducer interface {
	// PublishOrderPaid 发布支付确认成功事件，履约服务据此创建包裹
	PublishOrderPaid(ctx context.Context, event *domain.OrderPaid) error
}

// NotificationProducer 是用户通知的出站端口。
// 发送失败只记录，不回滚触发它的状态变更。
type NotificationProducer interface {
	SendOrderStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error
}

package domain

import "time"

// OrderPaid 在支付确认成功后发布，驱动履约服务创建包裹
type OrderPaid struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount int64     `json:"totalAmount"`
	ItemCount   int       `json:"itemCount"`
	PaidAt      time.Time `json:"paidAt"`
}

// OrderStatusChanged 在订单主状态变化时发布，供通知服务消费
type OrderStatusChanged struct {
	OrderID   string      `json:"orderId"`
	UserID    string      `json:"userId"`
	OldStatus OrderStatus `json:"oldStatus"`
	NewStatus OrderStatus `json:"newStatus"`
	At        time.Time   `json:"at"`
}

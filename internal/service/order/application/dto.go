package application

import (
	"time"

	"storefront/internal/service/order/domain"
)

// CheckoutRequest 是结算用例的输入
type CheckoutRequest struct {
	UserID          string         `json:"userId"`
	ShippingAddress domain.Address `json:"shippingAddress"`
}

// CheckoutResponse 是结算用例的输出
type CheckoutResponse struct {
	OrderID       string `json:"orderId"`
	Status        int    `json:"status"`
	PaymentStatus int    `json:"paymentStatus"`
	TotalAmount   int64  `json:"totalAmount"`
	ClientSecret  string `json:"clientSecret"` // 前端用它完成支付
}

// OrderDTO 是订单的对外表示，状态字段序列化为小整数
type OrderDTO struct {
	ID              string             `json:"id"`
	UserID          string             `json:"userId"`
	Items           []domain.OrderItem `json:"items"`
	TotalAmount     int64              `json:"totalAmount"`
	Status          int                `json:"status"`
	PaymentStatus   int                `json:"paymentStatus"`
	PaymentIntentID string             `json:"paymentIntentId,omitempty"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	ReturnStatus    int                `json:"returnStatus"`
	ReturnDeadline  *time.Time         `json:"returnDeadline,omitempty"`
	TrackingNumber  string             `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ToOrderDTO 把领域实体转换为对外 DTO
func ToOrderDTO(o *domain.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           o.Items,
		TotalAmount:     o.TotalAmount,
		Status:          int(o.Status),
		PaymentStatus:   int(o.PaymentStatus),
		PaymentIntentID: o.PaymentIntentID,
		ShippingAddress: o.ShippingAddress,
		ReturnStatus:    int(o.ReturnStatus),
		TrackingNumber:  o.TrackingNumber,
		CreatedAt:       o.CreatedAt,
	}
	if !o.ReturnDeadline.IsZero() {
		deadline := o.ReturnDeadline
		dto.ReturnDeadline = &deadline
	}
	return dto
}

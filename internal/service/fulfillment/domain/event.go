package domain

import "time"

// PackageStatusChanged 在包裹状态变化时发布。
// 订单服务消费 Shipped/Delivered 联动订单主状态，通知服务消费全部。
type PackageStatusChanged struct {
	PackageID      string        `json:"packageId"`
	OrderID        string        `json:"orderId"`
	UserID         string        `json:"userId"`
	OldStatus      PackageStatus `json:"oldStatus"`
	NewStatus      PackageStatus `json:"newStatus"`
	TrackingNumber string        `json:"trackingNumber,omitempty"`
	At             time.Time     `json:"at"`
}

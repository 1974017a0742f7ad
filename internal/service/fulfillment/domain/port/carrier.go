package port

import "context"

// LabelRequest 是面单生成请求
type LabelRequest struct {
	PackageID   string  `json:"packageId"`
	OrderID     string  `json:"orderId"`
	Carrier     string  `json:"carrier"`
	WeightGrams float64 `json:"weightGrams"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// Label 是承运商返回的面单
type Label struct {
	TrackingNumber string `json:"trackingNumber"`
	LabelURL       string `json:"labelUrl"`
}

// TrackingEvent 是一条轨迹记录
type TrackingEvent struct {
	Status      string `json:"status"`
	Description string `json:"description"`
	At          string `json:"at"`
}

// CarrierGateway 是承运商网关的出站端口。
// 网关失败时调用方不得留下任何半成品状态；重试策略属于网关自身。
type CarrierGateway interface {
	GenerateLabel(ctx context.Context, req LabelRequest) (*Label, error)
	GetTracking(ctx context.Context, trackingNumber string) ([]TrackingEvent, error)
	CancelShipment(ctx context.Context, trackingNumber string) error
	SupportsCarrier(carrier string) bool
}

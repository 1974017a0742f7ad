package port

import "context"

// PaymentIntent 是支付网关返回的支付意向
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string // 网关侧状态: requires_payment / succeeded / failed
}

// PaymentIntentSucceeded 是网关对"支付成功"的状态表述
const PaymentIntentSucceeded = "succeeded"

// PaymentGateway 是支付网关的出站端口。
// 重试策略属于网关适配器的职责，核心不做重试。
type PaymentGateway interface {
	// CreatePaymentIntent 为指定金额创建支付意向，metadata 随意向透传
	CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*PaymentIntent, error)
	// GetPaymentIntent 查询支付意向的当前状态
	GetPaymentIntent(ctx context.Context, intentID string) (*PaymentIntent, error)
}

package port

import "context"

// ReturnFact 是退货资格评估的输入事实
type ReturnFact struct {
	OrderID           string  `json:"orderId"`
	TotalAmount       int64   `json:"totalAmount"`
	DaysSinceDelivery float64 `json:"daysSinceDelivery"`
	ItemCount         int     `json:"itemCount"`
}

// ReturnPolicy 评估一笔订单当前是否有退货资格。
// 策略本身（窗口长度、金额上限等）由运营配置下发，核心只负责调用。
type ReturnPolicy interface {
	Evaluate(ctx context.Context, fact ReturnFact) (bool, error)
}

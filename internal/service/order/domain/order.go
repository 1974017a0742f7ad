package domain

import (
	"time"

	"storefront/internal/pkg/apperrors"
)

// Address 是下单时的收货地址快照，不引用用户档案
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// OrderItem 是下单时购物车条目的快照
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"` // 单价，最小货币单位（分）
	Quantity  int    `json:"quantity"`
}

// Order 是订单聚合的根实体
type Order struct {
	ID              string
	UserID          string
	Items           []OrderItem
	TotalAmount     int64
	Status          OrderStatus
	PaymentStatus   PaymentStatus
	PaymentIntentID string
	ShippingAddress Address

	ReturnStatus   ReturnStatus
	ReturnReason   string
	ReturnDeadline time.Time

	TrackingNumber string
	DeliveredAt    time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder 从购物车快照创建一个新的订单实例。
// 条目和地址在这里被复制，后续购物车的变化不再影响订单。
func NewOrder(id, userID string, items []OrderItem, address Address, paymentIntentID string) (*Order, error) {
	if id == "" || userID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "order id and user id are required")
	}
	if len(items) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "cannot create order from an empty cart")
	}

	var total int64
	snapshot := make([]OrderItem, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, apperrors.Newf(apperrors.CodeValidation, "item %s has non-positive quantity", item.ProductID)
		}
		snapshot[i] = item
		total += item.UnitPrice * int64(item.Quantity)
	}

	now := time.Now()
	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           snapshot,
		TotalAmount:     total,
		Status:          OrderPending,
		PaymentStatus:   PaymentPending,
		PaymentIntentID: paymentIntentID,
		ShippingAddress: address,
		ReturnStatus:    ReturnNone,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// IsPaymentConfirmed 判断支付确认是否已经生效过（幂等判定用）
func (o *Order) IsPaymentConfirmed() bool {
	return o.PaymentStatus == PaymentCompleted && o.Status >= OrderProcessing
}

// MarkPaid 在支付网关确认成功后推进订单状态
func (o *Order) MarkPaid() error {
	if o.Status != OrderPending || o.PaymentStatus != PaymentPending {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"order %s cannot be marked paid from %s/%s", o.ID, o.Status, o.PaymentStatus)
	}
	o.Status = OrderProcessing
	o.PaymentStatus = PaymentCompleted
	o.UpdatedAt = time.Now()
	return nil
}

// TransitionTo 按显式流转表推进订单状态。
// returnWindow 用于在进入 Delivered 时计算退货截止时间。
func (o *Order) TransitionTo(next OrderStatus, returnWindow time.Duration) error {
	if !o.Status.CanTransitionTo(next) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"order %s cannot transition from %s to %s", o.ID, o.Status, next)
	}

	now := time.Now()
	switch next {
	case OrderDelivered:
		// 首次签收时起算退货窗口；退货被驳回回到 Delivered 不重置
		if o.DeliveredAt.IsZero() {
			o.DeliveredAt = now
			o.ReturnDeadline = now.Add(returnWindow)
		}
	case OrderReturned:
		o.ReturnStatus = ReturnRefunded
		o.PaymentStatus = PaymentRefunded
	}

	o.Status = next
	o.UpdatedAt = now
	return nil
}

// RequestReturn 由订单所有者发起退货。
// 只有已签收且仍在退货窗口内的订单才允许。
func (o *Order) RequestReturn(reason string, now time.Time) error {
	if o.Status != OrderDelivered {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"order %s is %s, only delivered orders can be returned", o.ID, o.Status)
	}
	if !o.ReturnDeadline.IsZero() && now.After(o.ReturnDeadline) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"return window for order %s closed at %s", o.ID, o.ReturnDeadline.Format(time.RFC3339))
	}
	o.ReturnStatus = ReturnRequested
	o.ReturnReason = reason
	o.Status = OrderReturnRequested
	o.UpdatedAt = now
	return nil
}

// TransitionReturn 按退货流转表推进退货子状态，并联动订单主状态
func (o *Order) TransitionReturn(next ReturnStatus) error {
	if !o.ReturnStatus.CanTransitionTo(next) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"order %s return status cannot go from %s to %s", o.ID, o.ReturnStatus, next)
	}

	o.ReturnStatus = next
	switch next {
	case ReturnRejected:
		// 驳回后订单回到已签收，退货窗口不重置
		o.Status = OrderDelivered
	case ReturnRefunded:
		o.Status = OrderReturned
		o.PaymentStatus = PaymentRefunded
	}
	o.UpdatedAt = time.Now()
	return nil
}

// AttachTracking 在包裹发货后回填运单号
func (o *Order) AttachTracking(trackingNumber string) {
	o.TrackingNumber = trackingNumber
	o.UpdatedAt = time.Now()
}

// OwnedBy 判断订单是否属于指定用户
func (o *Order) OwnedBy(userID string) bool {
	return o.UserID == userID
}

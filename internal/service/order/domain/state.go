package domain

// OrderStatus 定义了订单的履约生命周期状态。
// 对外序列化为小整数，顺序不可调整。
type OrderStatus int

const (
	OrderPending         OrderStatus = iota // 已创建，等待支付
	OrderProcessing                         // 支付完成，备货中
	OrderShipped                            // 已发货
	OrderDelivered                          // 已签收
	OrderCancelled                          // 已取消（终态）
	OrderReturnRequested                    // 用户已发起退货
	OrderReturned                           // 退货完成（终态）
)

func (s OrderStatus) String() string {
	switch s {
	case OrderPending:
		return "PENDING"
	case OrderProcessing:
		return "PROCESSING"
	case OrderShipped:
		return "SHIPPED"
	case OrderDelivered:
		return "DELIVERED"
	case OrderCancelled:
		return "CANCELLED"
	case OrderReturnRequested:
		return "RETURN_REQUESTED"
	case OrderReturned:
		return "RETURNED"
	default:
		return "UNKNOWN"
	}
}

// allowedOrderTransitions 是订单状态的显式流转表。
// 管理端的任何状态写入都必须先过这张表，而不是直接落库。
var allowedOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:         {OrderProcessing, OrderCancelled},
	OrderProcessing:      {OrderShipped, OrderCancelled},
	OrderShipped:         {OrderDelivered},
	OrderDelivered:       {OrderReturnRequested},
	OrderReturnRequested: {OrderReturned, OrderDelivered}, // 回到 Delivered 即退货被驳回
}

// AllowedNext 返回当前状态的合法后继集合
func (s OrderStatus) AllowedNext() []OrderStatus {
	return allowedOrderTransitions[s]
}

// CanTransitionTo 判断 next 是否是当前状态的合法后继
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, n := range allowedOrderTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

// PaymentStatus 定义了订单的支付状态
type PaymentStatus int

const (
	PaymentPending PaymentStatus = iota
	PaymentCompleted
	PaymentFailed
	PaymentRefunded
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentPending:
		return "PENDING"
	case PaymentCompleted:
		return "COMPLETED"
	case PaymentFailed:
		return "FAILED"
	case PaymentRefunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

// ReturnStatus 定义了退货子流程的状态
type ReturnStatus int

const (
	ReturnNone ReturnStatus = iota
	ReturnRequested
	ReturnApproved
	ReturnRejected
	ReturnInTransit
	ReturnReceived
	ReturnRefunded
)

func (s ReturnStatus) String() string {
	switch s {
	case ReturnNone:
		return "NONE"
	case ReturnRequested:
		return "REQUESTED"
	case ReturnApproved:
		return "APPROVED"
	case ReturnRejected:
		return "REJECTED"
	case ReturnInTransit:
		return "IN_TRANSIT"
	case ReturnReceived:
		return "RECEIVED"
	case ReturnRefunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

var allowedReturnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnRequested: {ReturnApproved, ReturnRejected},
	ReturnApproved:  {ReturnInTransit},
	ReturnInTransit: {ReturnReceived},
	ReturnReceived:  {ReturnRefunded},
}

// AllowedNext 返回退货状态的合法后继集合
func (s ReturnStatus) AllowedNext() []ReturnStatus {
	return allowedReturnTransitions[s]
}

// CanTransitionTo 判断 next 是否是当前退货状态的合法后继
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, n := range allowedReturnTransitions[s] {
		if n == next {
			return true
		}
	}
	return false
}

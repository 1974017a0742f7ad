package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/pkg/logger"
	fulfillment "storefront/internal/service/fulfillment/domain"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// OrderApplicationService 负责订单相关的业务流程编排。
type OrderApplicationService struct {
	orderRepo    domain.OrderRepository
	cartRepo     domain.CartRepository
	returnWindow time.Duration
	tracer       trace.Tracer

	paymentGateway port.PaymentGateway
	returnPolicy   port.ReturnPolicy
	eventProducer  port.OrderEventProducer
	notifier       port.NotificationProducer
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	cartRepo domain.CartRepository,
	returnWindow time.Duration,
	tracer trace.Tracer,
	paymentGateway port.PaymentGateway,
	returnPolicy port.ReturnPolicy,
	eventProducer port.OrderEventProducer,
	notifier port.NotificationProducer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo: orderRepo, cartRepo: cartRepo,
		returnWindow: returnWindow, tracer: tracer,
		paymentGateway: paymentGateway, returnPolicy: returnPolicy,
		eventProducer: eventProducer, notifier: notifier,
	}
}

// Checkout 把购物车快照为一笔新订单。
// 成功路径：创建支付意向 -> 持久化订单(Pending/Pending) -> 清空购物车。
// 支付意向创建失败时不落任何本地状态。
func (s *OrderApplicationService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := s.tracer.Start(ctx, "app.Checkout")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	cart, err := s.cartRepo.Get(ctx, req.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, apperrors.New(apperrors.CodeValidation, "cart is empty")
	}

	orderID := uuid.New().String()
	order, err := domain.NewOrder(orderID, req.UserID, cart.Snapshot(), req.ShippingAddress, "")
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	intent, err := s.paymentGateway.CreatePaymentIntent(ctx, order.TotalAmount, map[string]string{
		"order_id": order.ID,
		"user_id":  order.UserID,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create payment intent")
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "payment gateway unavailable", err)
	}
	order.PaymentIntentID = intent.ID

	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return nil, err
	}

	// 清空（而不是删除）购物车。订单已落库，清空失败不回滚结算。
	if err := s.cartRepo.Clear(ctx, req.UserID); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("user_id", req.UserID).Msg("failed to clear cart after checkout")
	}

	span.AddEvent("Order created and pending payment.")
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Int64("total", order.TotalAmount).Msg("order created")

	return &CheckoutResponse{
		OrderID:       order.ID,
		Status:        int(order.Status),
		PaymentStatus: int(order.PaymentStatus),
		TotalAmount:   order.TotalAmount,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

// ConfirmPayment 在网关确认支付成功后推进订单。
// 幂等：同一个支付意向重复确认时返回 false 且不做任何变更。
func (s *OrderApplicationService) ConfirmPayment(ctx context.Context, paymentIntentID string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "app.ConfirmPayment")
	defer span.End()
	span.SetAttributes(attribute.String("payment.intent_id", paymentIntentID))

	order, err := s.orderRepo.FindByPaymentIntentID(ctx, paymentIntentID)
	if err != nil {
		span.RecordError(err)
		return false, err
	}

	if order.IsPaymentConfirmed() {
		span.AddEvent("Payment already confirmed, short-circuit.")
		return false, nil
	}

	intent, err := s.paymentGateway.GetPaymentIntent(ctx, paymentIntentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment gateway lookup failed")
		return false, apperrors.Wrap(apperrors.CodeExternalService, "payment gateway unavailable", err)
	}
	if intent.Status != port.PaymentIntentSucceeded {
		return false, apperrors.Newf(apperrors.CodeValidation,
			"payment intent %s is %q at gateway, not confirming", paymentIntentID, intent.Status)
	}

	if err := order.MarkPaid(); err != nil {
		span.RecordError(err)
		return false, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return false, err
	}

	// 支付事件驱动履约服务创建包裹
	paid := &domain.OrderPaid{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Items),
		PaidAt:      time.Now(),
	}
	if err := s.eventProducer.PublishOrderPaid(ctx, paid); err != nil {
		// 事件发布失败需要人工介入，但订单状态已经正确落库
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order-paid event")
		span.RecordError(err)
	}

	s.notifyStatusChange(ctx, order, domain.OrderPending)

	logger.Ctx(ctx).Info().Str("order_id", order.ID).Msg("payment confirmed, order is processing")
	return true, nil
}

// UpdateOrderStatus 管理端推进订单主状态，流转必须在允许表内
func (s *OrderApplicationService) UpdateOrderStatus(ctx context.Context, orderID string, next domain.OrderStatus, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.UpdateOrderStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("order.next_status", next.String()),
	)

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can update order status")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := order.Status
	if err := order.TransitionTo(next, s.returnWindow); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	s.notifyStatusChange(ctx, order, old)
	return nil
}

// RequestReturn 由订单所有者发起退货申请
func (s *OrderApplicationService) RequestReturn(ctx context.Context, orderID, reason string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.RequestReturn")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID))

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !order.OwnedBy(actor.UserID) && !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only the order owner can request a return")
	}

	now := time.Now()
	if order.Status == domain.OrderDelivered {
		// 状态与窗口检查之外，还要过运营配置的资格策略
		eligible, err := s.returnPolicy.Evaluate(ctx, port.ReturnFact{
			OrderID:           order.ID,
			TotalAmount:       order.TotalAmount,
			DaysSinceDelivery: now.Sub(order.DeliveredAt).Hours() / 24,
			ItemCount:         len(order.Items),
		})
		if err != nil {
			span.RecordError(err)
			return apperrors.Wrap(apperrors.CodeInternal, "return policy evaluation failed", err)
		}
		if !eligible {
			return apperrors.Newf(apperrors.CodeValidation, "order %s is not eligible for return under current policy", order.ID)
		}
	}

	old := order.Status
	if err := order.RequestReturn(reason, now); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	s.notifyStatusChange(ctx, order, old)
	logger.Ctx(ctx).Info().Str("order_id", order.ID).Str("reason", reason).Msg("return requested")
	return nil
}

// UpdateReturnStatus 管理端推进退货子状态
func (s *OrderApplicationService) UpdateReturnStatus(ctx context.Context, orderID string, next domain.ReturnStatus, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.UpdateReturnStatus")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", orderID),
		attribute.String("return.next_status", next.String()),
	)

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can update return status")
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := order.Status
	if err := order.TransitionReturn(next); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	if order.Status != old {
		s.notifyStatusChange(ctx, order, old)
	}
	return nil
}

// GetOrder 查询单笔订单，所有者或管理员可见
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID string, actor identity.Actor) (*OrderDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetOrder")
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !order.OwnedBy(actor.UserID) && !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not allowed to view this order")
	}
	return ToOrderDTO(order), nil
}

// ListOrders 查询用户自己的订单列表
func (s *OrderApplicationService) ListOrders(ctx context.Context, actor identity.Actor) ([]*OrderDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.ListOrders")
	defer span.End()

	orders, err := s.orderRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	dtos := make([]*OrderDTO, len(orders))
	for i, o := range orders {
		dtos[i] = ToOrderDTO(o)
	}
	return dtos, nil
}

// HandlePackageStatusEvent 消费履约服务的包裹状态事件，联动订单主状态。
// 包裹 Shipped/Delivered 之外的状态变化不影响订单。
func (s *OrderApplicationService) HandlePackageStatusEvent(ctx context.Context, event *fulfillment.PackageStatusChanged) error {
	ctx, span := s.tracer.Start(ctx, "app.HandlePackageStatusEvent", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", event.OrderID),
		attribute.String("package.status", event.NewStatus.String()),
	)

	var next domain.OrderStatus
	switch event.NewStatus {
	case fulfillment.PackageShipped:
		next = domain.OrderShipped
	case fulfillment.PackageDelivered:
		next = domain.OrderDelivered
	default:
		return nil
	}

	order, err := s.orderRepo.FindByID(ctx, event.OrderID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := order.Status
	if err := order.TransitionTo(next, s.returnWindow); err != nil {
		// 订单可能已被管理员手工推进过，跳过而不是报警
		logger.Ctx(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("package event ignored, order already past this state")
		return nil
	}
	if next == domain.OrderShipped && event.TrackingNumber != "" {
		order.AttachTracking(event.TrackingNumber)
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		return err
	}

	s.notifyStatusChange(ctx, order, old)
	return nil
}

// notifyStatusChange 发出订单状态变化通知，失败不影响主流程
func (s *OrderApplicationService) notifyStatusChange(ctx context.Context, order *domain.Order, old domain.OrderStatus) {
	event := &domain.OrderStatusChanged{
		OrderID:   order.ID,
		UserID:    order.UserID,
		OldStatus: old,
		NewStatus: order.Status,
		At:        time.Now(),
	}
	if err := s.notifier.SendOrderStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("order_id", order.ID).Msg("failed to send status notification")
	}
}

package notification

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	orderdomain "storefront/internal/service/order/domain"
	supportdomain "storefront/internal/service/support/domain"
)

// Notifier 把订单状态变化翻译成用户通知。
// 投递是尽力而为的：失败记录后丢弃，绝不把错误传回触发方。
type Notifier struct {
	mail   MailGateway
	tracer trace.Tracer
}

func NewNotifier(mail MailGateway) *Notifier {
	return &Notifier{
		mail:   mail,
		tracer: otel.Tracer("notification-service"),
	}
}

// HandleOrderStatusChanged 为一次订单状态变化发送邮件通知
func (n *Notifier) HandleOrderStatusChanged(ctx context.Context, event *orderdomain.OrderStatusChanged) {
	ctx, span := n.tracer.Start(ctx, "notifier.HandleOrderStatusChanged", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", event.OrderID),
		attribute.String("user.id", event.UserID),
	)

	mail := Mail{
		To:      event.UserID,
		Subject: fmt.Sprintf("您的订单 %s 有了新进展", event.OrderID),
		Body:    statusMessage(event),
	}

	if err := n.mail.Send(ctx, mail); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mail delivery failed")
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", event.OrderID).
			Str("user_id", event.UserID).
			Msg("notification dropped after mail failure")
		return
	}
	span.AddEvent("Notification sent successfully")
}

// HandleTicketMessage 为工单的客服回复给工单所有者发邮件。
// 客户自己的消息不触发邮件，客户不需要被告知自己说了什么。
func (n *Notifier) HandleTicketMessage(ctx context.Context, event *supportdomain.TicketMessageAdded) {
	ctx, span := n.tracer.Start(ctx, "notifier.HandleTicketMessage", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("ticket.id", event.TicketID),
		attribute.String("user.id", event.UserID),
	)

	if !event.IsAdmin {
		span.AddEvent("Customer message, no mail.")
		return
	}

	mail := Mail{
		To:      event.UserID,
		Subject: fmt.Sprintf("您的工单 %s 有了新回复", event.TicketID),
		Body:    event.Body,
	}

	if err := n.mail.Send(ctx, mail); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "mail delivery failed")
		logger.Ctx(ctx).Error().Err(err).
			Str("ticket_id", event.TicketID).
			Str("user_id", event.UserID).
			Msg("notification dropped after mail failure")
		return
	}
	span.AddEvent("Notification sent successfully")
}

func statusMessage(event *orderdomain.OrderStatusChanged) string {
	switch event.NewStatus {
	case orderdomain.OrderProcessing:
		return fmt.Sprintf("订单 %s 已支付成功，我们正在为您备货。", event.OrderID)
	case orderdomain.OrderShipped:
		return fmt.Sprintf("订单 %s 已发货。", event.OrderID)
	case orderdomain.OrderDelivered:
		return fmt.Sprintf("订单 %s 已签收，感谢您的购买。", event.OrderID)
	case orderdomain.OrderCancelled:
		return fmt.Sprintf("订单 %s 已取消。", event.OrderID)
	case orderdomain.OrderReturnRequested:
		return fmt.Sprintf("订单 %s 的退货申请已收到。", event.OrderID)
	case orderdomain.OrderReturned:
		return fmt.Sprintf("订单 %s 退款已完成。", event.OrderID)
	default:
		return fmt.Sprintf("订单 %s 状态更新为 %s。", event.OrderID, event.NewStatus)
	}
}

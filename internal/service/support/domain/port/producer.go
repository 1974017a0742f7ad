package port

import (
	"context"

	"storefront/internal/service/support/domain"
)

// TicketEventProducer 是工单事件的出站端口
type TicketEventProducer interface {
	PublishMessageAdded(ctx context.Context, event *domain.TicketMessageAdded) error
}

package domain

import "context"

// TicketRepository 是工单的持久化出站端口
type TicketRepository interface {
	Create(ctx context.Context, ticket *Ticket) error
	Save(ctx context.Context, ticket *Ticket) error
	FindByID(ctx context.Context, id string) (*Ticket, error)
	FindByUserID(ctx context.Context, userID string) ([]*Ticket, error)
	FindByStatus(ctx context.Context, status TicketStatus) ([]*Ticket, error)
}

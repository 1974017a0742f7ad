package infrastructure

import (
	"storefront/internal/service/support/domain"
)

// ToDomainTicket 将数据库模型转换为领域模型
func ToDomainTicket(model *TicketModel) *domain.Ticket {
	if model == nil {
		return nil
	}

	messages := make([]domain.Message, 0, len(model.Messages))
	for _, m := range model.Messages {
		messages = append(messages, domain.Message{
			SenderID: m.SenderID,
			IsAdmin:  m.IsAdmin,
			Body:     m.Body,
			SentAt:   m.SentAt,
		})
	}

	return &domain.Ticket{
		ID:                model.ID,
		UserID:            model.UserID,
		OrderID:           model.OrderID,
		Subject:           model.Subject,
		Status:            model.Status,
		Priority:          model.Priority,
		Messages:          messages,
		AssignedToAdminID: model.AssignedToAdminID,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// FromDomainTicket 将领域模型转换为数据库模型
func FromDomainTicket(ticket *domain.Ticket) *TicketModel {
	if ticket == nil {
		return nil
	}

	messages := make([]TicketMessageModel, 0, len(ticket.Messages))
	for _, m := range ticket.Messages {
		messages = append(messages, TicketMessageModel{
			TicketID: ticket.ID,
			SenderID: m.SenderID,
			IsAdmin:  m.IsAdmin,
			Body:     m.Body,
			SentAt:   m.SentAt,
		})
	}

	return &TicketModel{
		ID:                ticket.ID,
		UserID:            ticket.UserID,
		OrderID:           ticket.OrderID,
		Subject:           ticket.Subject,
		Status:            ticket.Status,
		Priority:          ticket.Priority,
		AssignedToAdminID: ticket.AssignedToAdminID,
		CreatedAt:         ticket.CreatedAt,
		UpdatedAt:         ticket.UpdatedAt,
		Messages:          messages,
	}
}

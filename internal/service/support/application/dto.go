package application

import (
	"time"

	"storefront/internal/service/support/domain"
)

// CreateTicketRequest 是创建工单的入参
type CreateTicketRequest struct {
	OrderID  string `json:"orderId,omitempty"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Priority int    `json:"priority"`
}

// AddMessageRequest 是追加消息的入参
type AddMessageRequest struct {
	Body string `json:"body"`
}

// MessageDTO 是消息的对外表示
type MessageDTO struct {
	SenderID string    `json:"senderId"`
	IsAdmin  bool      `json:"isAdmin"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// TicketDTO 是工单的对外表示，状态与优先级序列化为小整数
type TicketDTO struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	OrderID           string       `json:"orderId,omitempty"`
	Subject           string       `json:"subject"`
	Status            int          `json:"status"`
	Priority          int          `json:"priority"`
	AssignedToAdminID string       `json:"assignedToAdminId,omitempty"`
	Messages          []MessageDTO `json:"messages"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}

// ToTicketDTO 把领域工单转换为 DTO
func ToTicketDTO(t *domain.Ticket) *TicketDTO {
	msgs := make([]MessageDTO, 0, len(t.Messages))
	for _, m := range t.Messages {
		msgs = append(msgs, MessageDTO{
			SenderID: m.SenderID,
			IsAdmin:  m.IsAdmin,
			Body:     m.Body,
			SentAt:   m.SentAt,
		})
	}
	return &TicketDTO{
		ID:                t.ID,
		UserID:            t.UserID,
		OrderID:           t.OrderID,
		Subject:           t.Subject,
		Status:            int(t.Status),
		Priority:          int(t.Priority),
		AssignedToAdminID: t.AssignedToAdminID,
		Messages:          msgs,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
	}
}

package domain

import (
	"time"

	"storefront/internal/pkg/apperrors"
)

// TicketStatus 定义了工单的生命周期状态。
// 对外序列化为小整数，顺序不可调整。
type TicketStatus int

const (
	TicketOpen TicketStatus = iota
	TicketInProgress
	TicketWaitingCustomer
	TicketResolved
	TicketClosed
)

func (s TicketStatus) String() string {
	switch s {
	case TicketOpen:
		return "OPEN"
	case TicketInProgress:
		return "IN_PROGRESS"
	case TicketWaitingCustomer:
		return "WAITING_CUSTOMER"
	case TicketResolved:
		return "RESOLVED"
	case TicketClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Priority 是工单优先级
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityUrgent
)

// Message 是工单里的一条消息，只追加不修改
type Message struct {
	SenderID string    `json:"senderId"`
	IsAdmin  bool      `json:"isAdmin"`
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
}

// Ticket 是客服工单聚合根。消息列表由工单独占，插入顺序即展示顺序。
type Ticket struct {
	ID       string
	UserID   string
	OrderID  string // 可选，关联订单
	Subject  string
	Status   TicketStatus
	Priority Priority
	Messages []Message

	AssignedToAdminID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewTicket 创建一个新工单，初始状态 Open，首条消息来自用户
func NewTicket(id, userID, orderID, subject, body string, priority Priority) (*Ticket, error) {
	if id == "" || userID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "ticket id and user id are required")
	}
	if subject == "" || body == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "ticket subject and first message are required")
	}
	now := time.Now()
	return &Ticket{
		ID:       id,
		UserID:   userID,
		OrderID:  orderID,
		Subject:  subject,
		Status:   TicketOpen,
		Priority: priority,
		Messages: []Message{
			{SenderID: userID, IsAdmin: false, Body: body, SentAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AddMessage 追加一条消息，并按规则自动流转状态：
// 客户在 Resolved/Closed 工单上回复会重新打开为 InProgress；
// 管理员在 Open 工单上回复会推进为 InProgress。
func (t *Ticket) AddMessage(senderID string, isAdmin bool, body string) (*Message, error) {
	if body == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "message body is empty")
	}

	msg := Message{SenderID: senderID, IsAdmin: isAdmin, Body: body, SentAt: time.Now()}
	t.Messages = append(t.Messages, msg)

	switch {
	case !isAdmin && (t.Status == TicketResolved || t.Status == TicketClosed):
		t.Status = TicketInProgress
	case isAdmin && t.Status == TicketOpen:
		t.Status = TicketInProgress
	}

	t.UpdatedAt = msg.SentAt
	return &t.Messages[len(t.Messages)-1], nil
}

// Assign 指派处理人，不改变状态
func (t *Ticket) Assign(adminID string) {
	t.AssignedToAdminID = adminID
	t.UpdatedAt = time.Now()
}

// SetStatus 管理端设置工单状态。工单允许任意流转（可反复关闭/重开）。
func (t *Ticket) SetStatus(next TicketStatus) {
	t.Status = next
	t.UpdatedAt = time.Now()
}

// OwnedBy 判断工单是否属于指定用户
func (t *Ticket) OwnedBy(userID string) bool {
	return t.UserID == userID
}

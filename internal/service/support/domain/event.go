package domain

import "time"

// TicketMessageAdded 在工单新增消息时发布，推送网关据此实时通知工单所有者
type TicketMessageAdded struct {
	TicketID string    `json:"ticketId"`
	UserID   string    `json:"userId"` // 工单所有者，推送路由的目标
	SenderID string    `json:"senderId"`
	IsAdmin  bool      `json:"isAdmin"`
	Body     string    `json:"body"`
	At       time.Time `json:"at"`
}

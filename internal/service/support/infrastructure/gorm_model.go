package infrastructure

import (
	"time"

	"storefront/internal/service/support/domain"
)

// TicketModel 对应数据库中的 ticket 表
type TicketModel struct {
	ID       string              `gorm:"primaryKey;size:36"`
	UserID   string              `gorm:"index;size:36"`
	OrderID  string              `gorm:"index;size:36"`
	Subject  string              `gorm:"size:255"`
	Status   domain.TicketStatus `gorm:"type:tinyint;index"`
	Priority domain.Priority     `gorm:"type:tinyint"`

	AssignedToAdminID string `gorm:"size:36"`

	CreatedAt time.Time
	UpdatedAt time.Time

	// 自增主键保证消息的插入顺序即读取顺序
	Messages []TicketMessageModel `gorm:"foreignKey:TicketID"`
}

// TableName 指定 GORM 应该使用的表名
func (TicketModel) TableName() string {
	return "ticket"
}

// TicketMessageModel 对应数据库中的 ticket_message 表，只插入不更新
type TicketMessageModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	TicketID string `gorm:"index;size:36"`
	SenderID string `gorm:"size:36"`
	IsAdmin  bool
	Body     string `gorm:"type:text"`
	SentAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (TicketMessageModel) TableName() string {
	return "ticket_message"
}

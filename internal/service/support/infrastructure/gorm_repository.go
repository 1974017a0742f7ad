package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/database"
	"storefront/internal/service/support/domain"
)

// GormTicketRepository 是 TicketRepository 的 GORM 实现
type GormTicketRepository struct {
	db *gorm.DB
}

// NewGormTicketRepository 创建一个新的 GORM 仓储实例
func NewGormTicketRepository(db *gorm.DB) *GormTicketRepository {
	return &GormTicketRepository{db: db}
}

// Create 插入工单及其首条消息
func (r *GormTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	model := FromDomainTicket(ticket)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return apperrors.New(apperrors.CodeConflict, "ticket already exists")
		}
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to create ticket", err)
	}
	return nil
}

// Save 以一个事务更新工单并追加新消息。
// 消息只追加不修改：库里已有 N 条时，只插入领域模型里第 N 条之后的部分。
func (r *GormTicketRepository) Save(ctx context.Context, ticket *domain.Ticket) error {
	model := FromDomainTicket(ticket)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&TicketModel{}).
			Where("id = ?", model.ID).
			Updates(map[string]interface{}{
				"status":               model.Status,
				"priority":             model.Priority,
				"assigned_to_admin_id": model.AssignedToAdminID,
				"updated_at":           model.UpdatedAt,
			}).Error; err != nil {
			return err
		}

		var stored int64
		if err := tx.Model(&TicketMessageModel{}).Where("ticket_id = ?", model.ID).Count(&stored).Error; err != nil {
			return err
		}
		if int(stored) < len(model.Messages) {
			tail := model.Messages[stored:]
			if err := tx.Create(&tail).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to save ticket", err)
	}
	return nil
}

// FindByID 按主键查找工单，消息按插入顺序返回
func (r *GormTicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	var model TicketModel
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "ticket not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to query ticket", err)
	}
	return ToDomainTicket(&model), nil
}

// FindByUserID 列出用户的工单，最近更新的在前
func (r *GormTicketRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Ticket, error) {
	return r.findAll(ctx, "user_id = ?", userID)
}

// FindByStatus 按状态列出工单，管理端队列视图用
func (r *GormTicketRepository) FindByStatus(ctx context.Context, status domain.TicketStatus) ([]*domain.Ticket, error) {
	return r.findAll(ctx, "status = ?", status)
}

func (r *GormTicketRepository) findAll(ctx context.Context, query string, arg interface{}) ([]*domain.Ticket, error) {
	var models []TicketModel
	err := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where(query, arg).
		Order("updated_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to list tickets", err)
	}

	tickets := make([]*domain.Ticket, 0, len(models))
	for i := range models {
		tickets = append(tickets, ToDomainTicket(&models[i]))
	}
	return tickets, nil
}

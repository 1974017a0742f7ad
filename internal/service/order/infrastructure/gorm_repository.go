package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/database"
	"storefront/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 以一个事务持久化订单及其条目，整体成功或整体失败。
// payment_intent_id 上的唯一索引把重复写入翻译成 Conflict。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := FromDomainOrder(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := model.Items
		model.Items = nil
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error; err != nil {
			return err
		}
		// 订单条目是下单时的快照，替换式写入
		if err := tx.Where("order_id = ?", model.ID).Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if database.IsDuplicateEntry(err) {
			return apperrors.Wrap(apperrors.CodeConflict, "order with this payment intent already exists", err)
		}
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to save order", err)
	}
	return nil
}

// FindByID 按主键查找订单
func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByPaymentIntentID 按支付单号查找订单，支付回调用
func (r *GormOrderRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	return r.findOne(ctx, "payment_intent_id = ?", intentID)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to query order", err)
	}
	return ToDomainOrder(&model), nil
}

// FindByUserID 列出用户的订单，按创建时间倒序
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to list orders", err)
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}

// GormWarrantyClaimRepository 是 WarrantyClaimRepository 的 GORM 实现
type GormWarrantyClaimRepository struct {
	db *gorm.DB
}

func NewGormWarrantyClaimRepository(db *gorm.DB) *GormWarrantyClaimRepository {
	return &GormWarrantyClaimRepository{db: db}
}

// Create 插入保修申请。(order_id, product_id) 联合唯一索引
// 把重复申请直接翻译成 Conflict，不做先查后写。
func (r *GormWarrantyClaimRepository) Create(ctx context.Context, claim *domain.WarrantyClaim) error {
	model := FromDomainClaim(claim)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return apperrors.New(apperrors.CodeConflict, "warranty claim already filed for this product")
		}
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to create warranty claim", err)
	}
	return nil
}

// Save 更新保修申请状态
func (r *GormWarrantyClaimRepository) Save(ctx context.Context, claim *domain.WarrantyClaim) error {
	model := FromDomainClaim(claim)
	err := r.db.WithContext(ctx).Model(&WarrantyClaimModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"description": model.Description,
			"updated_at":  model.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to save warranty claim", err)
	}
	return nil
}

// FindByID 按主键查找保修申请
func (r *GormWarrantyClaimRepository) FindByID(ctx context.Context, id string) (*domain.WarrantyClaim, error) {
	var model WarrantyClaimModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "warranty claim not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to query warranty claim", err)
	}
	return ToDomainClaim(&model), nil
}

// FindByOrderID 列出订单下的全部保修申请
func (r *GormWarrantyClaimRepository) FindByOrderID(ctx context.Context, orderID string) ([]*domain.WarrantyClaim, error) {
	var models []WarrantyClaimModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("created_at").Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to list warranty claims", err)
	}
	claims := make([]*domain.WarrantyClaim, 0, len(models))
	for i := range models {
		claims = append(claims, ToDomainClaim(&models[i]))
	}
	return claims, nil
}

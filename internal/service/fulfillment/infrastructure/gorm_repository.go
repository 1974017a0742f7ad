package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/database"
	"storefront/internal/service/fulfillment/domain"
)

// GormPackageRepository 是 PackageRepository 的 GORM 实现
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository 创建一个新的 GORM 仓储实例
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// Create 插入新包裹。order_id 唯一索引把同一订单的第二个包裹
// 翻译成 Conflict，调用方据此做幂等处理。
func (r *GormPackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	model := FromDomainPackage(pkg)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if database.IsDuplicateEntry(err) {
			return apperrors.New(apperrors.CodeConflict, "order already has a package")
		}
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to create package", err)
	}
	return nil
}

// Save 整行更新包裹。面单字段与 Shipped 状态在同一条 UPDATE 里落库，
// 不存在只写了一半的中间状态。
func (r *GormPackageRepository) Save(ctx context.Context, pkg *domain.Package) error {
	model := FromDomainPackage(pkg)
	err := r.db.WithContext(ctx).Model(&PackageModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"weight_grams":    model.WeightGrams,
			"length":          model.Length,
			"width":           model.Width,
			"height":          model.Height,
			"status":          model.Status,
			"carrier":         model.Carrier,
			"tracking_number": model.TrackingNumber,
			"label_url":       model.LabelURL,
			"prepared_by":     model.PreparedBy,
			"exception_note":  model.ExceptionNote,
			"updated_at":      model.UpdatedAt,
		}).Error
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to save package", err)
	}
	return nil
}

// FindByID 按主键查找包裹
func (r *GormPackageRepository) FindByID(ctx context.Context, id string) (*domain.Package, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderID 按订单号查找包裹
func (r *GormPackageRepository) FindByOrderID(ctx context.Context, orderID string) (*domain.Package, error) {
	return r.findOne(ctx, "order_id = ?", orderID)
}

func (r *GormPackageRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.Package, error) {
	var model PackageModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "package not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDatabase, "failed to query package", err)
	}
	return ToDomainPackage(&model), nil
}

// Delete 物理删除包裹，删除策略由应用层校验
func (r *GormPackageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&PackageModel{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.CodeDatabase, "failed to delete package", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.New(apperrors.CodeNotFound, "package not found")
	}
	return nil
}

package domain

import "context"

// PackageRepository 是包裹的持久化出站端口。
// Create 在订单已有包裹时返回 Conflict，由存储层唯一索引保证，
// 应用层不做 check-then-write。
type PackageRepository interface {
	Create(ctx context.Context, pkg *Package) error
	Save(ctx context.Context, pkg *Package) error
	FindByID(ctx context.Context, id string) (*Package, error)
	FindByOrderID(ctx context.Context, orderID string) (*Package, error)
	Delete(ctx context.Context, id string) error
}

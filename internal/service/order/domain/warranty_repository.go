package domain

import "context"

// WarrantyClaimRepository 是保修申请的持久化出站端口。
// Create 在 (orderID, productID) 重复时返回 Conflict。
type WarrantyClaimRepository interface {
	Create(ctx context.Context, claim *WarrantyClaim) error
	Save(ctx context.Context, claim *WarrantyClaim) error
	FindByID(ctx context.Context, id string) (*WarrantyClaim, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*WarrantyClaim, error)
}

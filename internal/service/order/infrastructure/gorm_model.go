package infrastructure

import (
	"time"

	"storefront/internal/service/order/domain"
)

// OrderModel 对应数据库中的 orders 表
type OrderModel struct {
	ID              string             `gorm:"primaryKey;size:36"`
	UserID          string             `gorm:"index;size:36"`
	TotalAmount     int64              // 单位：分
	Status          domain.OrderStatus `gorm:"type:tinyint"`
	PaymentStatus   domain.PaymentStatus `gorm:"type:tinyint"`
	PaymentIntentID string             `gorm:"uniqueIndex;size:64"`
	ShippingAddress string             `gorm:"type:json"`

	ReturnStatus   domain.ReturnStatus `gorm:"type:tinyint"`
	ReturnReason   string              `gorm:"type:text"`
	ReturnDeadline time.Time           `gorm:"default:null"`

	TrackingNumber string    `gorm:"size:64"`
	DeliveredAt    time.Time `gorm:"default:null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Items []OrderItemModel `gorm:"foreignKey:OrderID"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "orders"
}

// OrderItemModel 对应数据库中的 order_item 表，保存下单时的商品快照
type OrderItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	OrderID   string `gorm:"index;size:36"`
	ProductID string `gorm:"size:36"`
	Name      string
	UnitPrice int64
	Quantity  int
}

// TableName 指定 GORM 应该使用的表名
func (OrderItemModel) TableName() string {
	return "order_item"
}

// WarrantyClaimModel 对应数据库中的 warranty_claim 表。
// (order_id, product_id) 的联合唯一索引保证同一商品只有一条保修申请。
type WarrantyClaimModel struct {
	ID          string             `gorm:"primaryKey;size:36"`
	OrderID     string             `gorm:"uniqueIndex:uk_order_product;size:36"`
	ProductID   string             `gorm:"uniqueIndex:uk_order_product;size:36"`
	UserID      string             `gorm:"index;size:36"`
	Description string             `gorm:"type:text"`
	Status      domain.ClaimStatus `gorm:"type:tinyint"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (WarrantyClaimModel) TableName() string {
	return "warranty_claim"
}

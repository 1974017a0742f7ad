package infrastructure

import (
	"time"

	"storefront/internal/service/fulfillment/domain"
)

// PackageModel 对应数据库中的 package 表。
// order_id 上的唯一索引保证一个订单只有一个包裹。
type PackageModel struct {
	ID      string `gorm:"primaryKey;size:36"`
	OrderID string `gorm:"uniqueIndex;size:36"`
	UserID  string `gorm:"index;size:36"`

	WeightGrams float64
	Length      float64
	Width       float64
	Height      float64

	Status         domain.PackageStatus `gorm:"type:tinyint"`
	Carrier        string               `gorm:"size:32"`
	TrackingNumber string               `gorm:"size:64"`
	LabelURL       string               `gorm:"size:255"`

	PreparedBy    string `gorm:"size:36"`
	ExceptionNote string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (PackageModel) TableName() string {
	return "package"
}

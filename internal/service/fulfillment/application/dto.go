package application

import (
	"time"

	"storefront/internal/service/fulfillment/domain"
)

// PackageDTO 是包裹的对外表示，状态字段序列化为小整数
type PackageDTO struct {
	ID             string            `json:"id"`
	OrderID        string            `json:"orderId"`
	WeightGrams    float64           `json:"weightGrams,omitempty"`
	Dimensions     domain.Dimensions `json:"dimensions,omitempty"`
	Status         int               `json:"status"`
	Carrier        string            `json:"carrier"`
	TrackingNumber string            `json:"trackingNumber,omitempty"`
	LabelURL       string            `json:"labelUrl,omitempty"`
	ExceptionNote  string            `json:"exceptionNote,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ToPackageDTO 把领域实体转换为对外 DTO
func ToPackageDTO(p *domain.Package) *PackageDTO {
	return &PackageDTO{
		ID:             p.ID,
		OrderID:        p.OrderID,
		WeightGrams:    p.WeightGrams,
		Dimensions:     p.Dimensions,
		Status:         int(p.Status),
		Carrier:        p.Carrier,
		TrackingNumber: p.TrackingNumber,
		LabelURL:       p.LabelURL,
		ExceptionNote:  p.ExceptionNote,
		CreatedAt:      p.CreatedAt,
	}
}

// SetMeasurementsRequest 是录入称重量方的输入
type SetMeasurementsRequest struct {
	WeightGrams float64           `json:"weightGrams"`
	Dimensions  domain.Dimensions `json:"dimensions"`
}

package infrastructure

import (
	"storefront/internal/service/fulfillment/domain"
)

// ToDomainPackage 将数据库模型转换为领域模型
func ToDomainPackage(model *PackageModel) *domain.Package {
	if model == nil {
		return nil
	}
	return &domain.Package{
		ID:          model.ID,
		OrderID:     model.OrderID,
		UserID:      model.UserID,
		WeightGrams: model.WeightGrams,
		Dimensions: domain.Dimensions{
			Length: model.Length,
			Width:  model.Width,
			Height: model.Height,
		},
		Status:         model.Status,
		Carrier:        model.Carrier,
		TrackingNumber: model.TrackingNumber,
		LabelURL:       model.LabelURL,
		PreparedBy:     model.PreparedBy,
		ExceptionNote:  model.ExceptionNote,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}
}

// FromDomainPackage 将领域模型转换为数据库模型
func FromDomainPackage(pkg *domain.Package) *PackageModel {
	if pkg == nil {
		return nil
	}
	return &PackageModel{
		ID:             pkg.ID,
		OrderID:        pkg.OrderID,
		UserID:         pkg.UserID,
		WeightGrams:    pkg.WeightGrams,
		Length:         pkg.Dimensions.Length,
		Width:          pkg.Dimensions.Width,
		Height:         pkg.Dimensions.Height,
		Status:         pkg.Status,
		Carrier:        pkg.Carrier,
		TrackingNumber: pkg.TrackingNumber,
		LabelURL:       pkg.LabelURL,
		PreparedBy:     pkg.PreparedBy,
		ExceptionNote:  pkg.ExceptionNote,
		CreatedAt:      pkg.CreatedAt,
		UpdatedAt:      pkg.UpdatedAt,
	}
}

package infrastructure

import (
	"encoding/json"

	"storefront/internal/service/order/domain"
)

// ToDomainOrder 将数据库模型转换为领域模型
func ToDomainOrder(model *OrderModel) *domain.Order {
	if model == nil {
		return nil
	}

	items := make([]domain.OrderItem, 0, len(model.Items))
	for _, it := range model.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	var address domain.Address
	// 地址是下单时的 JSON 快照，解析失败留空即可
	_ = json.Unmarshal([]byte(model.ShippingAddress), &address)

	return &domain.Order{
		ID:              model.ID,
		UserID:          model.UserID,
		Items:           items,
		TotalAmount:     model.TotalAmount,
		Status:          model.Status,
		PaymentStatus:   model.PaymentStatus,
		PaymentIntentID: model.PaymentIntentID,
		ShippingAddress: address,
		ReturnStatus:    model.ReturnStatus,
		ReturnReason:    model.ReturnReason,
		ReturnDeadline:  model.ReturnDeadline,
		TrackingNumber:  model.TrackingNumber,
		DeliveredAt:     model.DeliveredAt,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
	}
}

// FromDomainOrder 将领域模型转换为数据库模型
func FromDomainOrder(order *domain.Order) *OrderModel {
	if order == nil {
		return nil
	}

	items := make([]OrderItemModel, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderItemModel{
			OrderID:   order.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	addressJSON, _ := json.Marshal(order.ShippingAddress)

	return &OrderModel{
		ID:              order.ID,
		UserID:          order.UserID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		PaymentIntentID: order.PaymentIntentID,
		ShippingAddress: string(addressJSON),
		ReturnStatus:    order.ReturnStatus,
		ReturnReason:    order.ReturnReason,
		ReturnDeadline:  order.ReturnDeadline,
		TrackingNumber:  order.TrackingNumber,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
		Items:           items,
	}
}

// ToDomainClaim 将数据库模型转换为领域模型
func ToDomainClaim(model *WarrantyClaimModel) *domain.WarrantyClaim {
	if model == nil {
		return nil
	}
	return &domain.WarrantyClaim{
		ID:          model.ID,
		OrderID:     model.OrderID,
		UserID:      model.UserID,
		ProductID:   model.ProductID,
		Description: model.Description,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

// FromDomainClaim 将领域模型转换为数据库模型
func FromDomainClaim(claim *domain.WarrantyClaim) *WarrantyClaimModel {
	if claim == nil {
		return nil
	}
	return &WarrantyClaimModel{
		ID:          claim.ID,
		OrderID:     claim.OrderID,
		ProductID:   claim.ProductID,
		UserID:      claim.UserID,
		Description: claim.Description,
		Status:      claim.Status,
		CreatedAt:   claim.CreatedAt,
		UpdatedAt:   claim.UpdatedAt,
	}
}

package domain

import (
	"time"

	"storefront/internal/pkg/apperrors"
)

// Dimensions 是包裹的外尺寸，单位厘米
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (d Dimensions) IsZero() bool {
	return d.Length == 0 && d.Width == 0 && d.Height == 0
}

// Package 是物理发货记录，与订单一一对应
type Package struct {
	ID      string
	OrderID string
	UserID  string

	WeightGrams float64
	Dimensions  Dimensions

	Status         PackageStatus
	Carrier        string
	TrackingNumber string
	LabelURL       string

	PreparedBy    string // 执行备货操作的管理员
	ExceptionNote string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPackage 在订单支付确认后创建包裹，初始状态 Pending
func NewPackage(id, orderID, userID, carrier string) (*Package, error) {
	if id == "" || orderID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "package id and order id are required")
	}
	now := time.Now()
	return &Package{
		ID:        id,
		OrderID:   orderID,
		UserID:    userID,
		Status:    PackagePending,
		Carrier:   carrier,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// MarkPreparing 管理员开始备货，记录操作人
func (p *Package) MarkPreparing(adminID string) error {
	if !p.Status.CanTransitionTo(PackagePreparing) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s cannot start preparing from %s", p.ID, p.Status)
	}
	p.Status = PackagePreparing
	p.PreparedBy = adminID
	p.ExceptionNote = ""
	p.UpdatedAt = time.Now()
	return nil
}

// SetMeasurements 录入称重量方。备货中的包裹在重量和尺寸齐全后自动进入 ReadyToShip。
func (p *Package) SetMeasurements(weightGrams float64, dims Dimensions) error {
	if p.Status != PackagePreparing {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s measurements can only be set while preparing, current status %s", p.ID, p.Status)
	}
	if weightGrams <= 0 || dims.IsZero() {
		return apperrors.New(apperrors.CodeValidation, "weight and dimensions must be positive")
	}
	p.WeightGrams = weightGrams
	p.Dimensions = dims
	p.Status = PackageReadyToShip
	p.UpdatedAt = time.Now()
	return nil
}

// MarkShipped 只在面单生成成功后调用。
// 不变量：Shipped 状态必须同时具备运单号和面单地址。
func (p *Package) MarkShipped(trackingNumber, labelURL string) error {
	if p.Status != PackageReadyToShip {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s cannot ship from %s", p.ID, p.Status)
	}
	if trackingNumber == "" || labelURL == "" {
		return apperrors.New(apperrors.CodeValidation, "shipped package requires tracking number and label url")
	}
	p.TrackingNumber = trackingNumber
	p.LabelURL = labelURL
	p.Status = PackageShipped
	p.UpdatedAt = time.Now()
	return nil
}

// MarkDelivered 由承运商回调或管理员触发
func (p *Package) MarkDelivered() error {
	if !p.Status.CanTransitionTo(PackageDelivered) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s cannot be delivered from %s", p.ID, p.Status)
	}
	p.Status = PackageDelivered
	p.UpdatedAt = time.Now()
	return nil
}

// MarkException 承运异常，记录原因
func (p *Package) MarkException(note string) error {
	if !p.Status.CanTransitionTo(PackageException) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s cannot enter exception from %s", p.ID, p.Status)
	}
	p.Status = PackageException
	p.ExceptionNote = note
	p.UpdatedAt = time.Now()
	return nil
}

// RecoverFromException 管理员把异常包裹拉回备货流程
func (p *Package) RecoverFromException(adminID string) error {
	if p.Status != PackageException {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s is not in exception, current status %s", p.ID, p.Status)
	}
	p.Status = PackagePreparing
	p.PreparedBy = adminID
	p.ExceptionNote = ""
	p.UpdatedAt = time.Now()
	return nil
}

// MarkReturned 退货收到后回仓
func (p *Package) MarkReturned() error {
	if !p.Status.CanTransitionTo(PackageReturned) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s cannot be returned from %s", p.ID, p.Status)
	}
	p.Status = PackageReturned
	p.UpdatedAt = time.Now()
	return nil
}

// CanDelete 删除策略：只有尚未进入履约（Pending）或处于异常的包裹可以删除
func (p *Package) CanDelete() bool {
	return p.Status == PackagePending || p.Status == PackageException
}

package domain

import (
	"time"

	"storefront/internal/pkg/apperrors"
)

// ClaimStatus 是保修申请的状态，对外序列化为小整数
type ClaimStatus int

const (
	ClaimFiled ClaimStatus = iota
	ClaimApproved
	ClaimRejected
	ClaimReplaced
	ClaimRefunded
)

func (s ClaimStatus) String() string {
	switch s {
	case ClaimFiled:
		return "FILED"
	case ClaimApproved:
		return "APPROVED"
	case ClaimRejected:
		return "REJECTED"
	case ClaimReplaced:
		return "REPLACED"
	case ClaimRefunded:
		return "REFUNDED"
	default:
		return "UNKNOWN"
	}
}

// 保修状态流转表。Rejected / Replaced / Refunded 为终态。
var allowedClaimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimFiled:    {ClaimApproved, ClaimRejected},
	ClaimApproved: {ClaimReplaced, ClaimRefunded},
}

// CanTransitionTo 检查保修状态能否流转到 next
func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range allowedClaimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WarrantyClaim 是保修申请。同一订单的同一商品只能有一条申请，
// 唯一性由存储层的联合唯一索引保证。
type WarrantyClaim struct {
	ID          string
	OrderID     string
	UserID      string
	ProductID   string
	Description string
	Status      ClaimStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewWarrantyClaim 基于已妥投的订单创建保修申请
func NewWarrantyClaim(id string, order *Order, productID, description string) (*WarrantyClaim, error) {
	if id == "" || productID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "claim id and product id are required")
	}
	if order.Status < OrderDelivered || order.Status == OrderCancelled {
		return nil, apperrors.Newf(apperrors.CodeInvalidTransition,
			"warranty claim requires a delivered order, current status is %s", order.Status)
	}

	found := false
	for _, item := range order.Items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return nil, apperrors.Newf(apperrors.CodeValidation, "product %s is not part of order %s", productID, order.ID)
	}

	now := time.Now()
	return &WarrantyClaim{
		ID:          id,
		OrderID:     order.ID,
		UserID:      order.UserID,
		ProductID:   productID,
		Description: description,
		Status:      ClaimFiled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TransitionTo 按流转表推进保修状态
func (c *WarrantyClaim) TransitionTo(next ClaimStatus) error {
	if !c.Status.CanTransitionTo(next) {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"warranty claim cannot go from %s to %s", c.Status, next)
	}
	c.Status = next
	c.UpdatedAt = time.Now()
	return nil
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/order/domain"
)

// FileClaimRequest 是提交保修申请的入参
type FileClaimRequest struct {
	OrderID     string `json:"orderId"`
	ProductID   string `json:"productId"`
	Description string `json:"description"`
}

// WarrantyClaimDTO 是保修申请的对外表示
type WarrantyClaimDTO struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	ProductID   string    `json:"productId"`
	Description string    `json:"description"`
	Status      int       `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toClaimDTO(c *domain.WarrantyClaim) *WarrantyClaimDTO {
	return &WarrantyClaimDTO{
		ID:          c.ID,
		OrderID:     c.OrderID,
		UserID:      c.UserID,
		ProductID:   c.ProductID,
		Description: c.Description,
		Status:      int(c.Status),
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// WarrantyApplicationService 编排保修申请用例
type WarrantyApplicationService struct {
	claimRepo domain.WarrantyClaimRepository
	orderRepo domain.OrderRepository
	tracer    trace.Tracer
}

func NewWarrantyApplicationService(
	claimRepo domain.WarrantyClaimRepository,
	orderRepo domain.OrderRepository,
) *WarrantyApplicationService {
	return &WarrantyApplicationService{
		claimRepo: claimRepo,
		orderRepo: orderRepo,
		tracer:    otel.Tracer("warranty-application-service"),
	}
}

// FileClaim 为已妥投订单中的某个商品提交保修申请。
// 同一订单同一商品的重复申请由存储层唯一索引拦截，返回 Conflict。
func (s *WarrantyApplicationService) FileClaim(ctx context.Context, actor identity.Actor, req *FileClaimRequest) (*WarrantyClaimDTO, error) {
	ctx, span := s.tracer.Start(ctx, "WarrantyService.FileClaim")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.id", req.OrderID),
		attribute.String("product.id", req.ProductID),
	)

	order, err := s.orderRepo.FindByID(ctx, req.OrderID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !order.OwnedBy(actor.UserID) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "order does not belong to caller")
	}

	claim, err := domain.NewWarrantyClaim(uuid.NewString(), order, req.ProductID, req.Description)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.claimRepo.Create(ctx, claim); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create warranty claim")
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("claim_id", claim.ID).
		Str("order_id", claim.OrderID).
		Str("product_id", claim.ProductID).
		Msg("warranty claim filed")
	return toClaimDTO(claim), nil
}

// UpdateClaimStatus 管理端推进保修申请状态，按流转表校验
func (s *WarrantyApplicationService) UpdateClaimStatus(ctx context.Context, actor identity.Actor, claimID string, next domain.ClaimStatus) (*WarrantyClaimDTO, error) {
	ctx, span := s.tracer.Start(ctx, "WarrantyService.UpdateClaimStatus")
	defer span.End()

	if !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only admins can update warranty claims")
	}

	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := claim.TransitionTo(next); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.claimRepo.Save(ctx, claim); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("claim_id", claimID).
		Str("new_status", next.String()).
		Msg("warranty claim status updated")
	return toClaimDTO(claim), nil
}

// ListClaims 列出某订单下的保修申请，仅订单所有者或管理员可见
func (s *WarrantyApplicationService) ListClaims(ctx context.Context, actor identity.Actor, orderID string) ([]*WarrantyClaimDTO, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !order.OwnedBy(actor.UserID) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "order does not belong to caller")
	}

	claims, err := s.claimRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dtos := make([]*WarrantyClaimDTO, 0, len(claims))
	for _, c := range claims {
		dtos = append(dtos, toClaimDTO(c))
	}
	return dtos, nil
}

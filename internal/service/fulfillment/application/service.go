package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/fulfillment/domain"
	"storefront/internal/service/fulfillment/domain/port"
	orderdomain "storefront/internal/service/order/domain"
	"storefront/internal/zookeeper"
)

// FulfillmentApplicationService 负责包裹履约流程编排。
type FulfillmentApplicationService struct {
	packageRepo domain.PackageRepository
	tracer      trace.Tracer

	carrier  port.CarrierGateway
	producer port.PackageEventProducer

	// zkConn 用于面单生成的跨实例互斥，nil 时退化为无锁（单实例/测试）
	zkConn         *zookeeper.Conn
	defaultCarrier string
}

func NewFulfillmentApplicationService(
	packageRepo domain.PackageRepository,
	tracer trace.Tracer,
	carrier port.CarrierGateway,
	producer port.PackageEventProducer,
	zkConn *zookeeper.Conn,
	defaultCarrier string,
) *FulfillmentApplicationService {
	return &FulfillmentApplicationService{
		packageRepo: packageRepo, tracer: tracer,
		carrier: carrier, producer: producer,
		zkConn: zkConn, defaultCarrier: defaultCarrier,
	}
}

// HandleOrderPaidEvent 消费订单支付事件，为订单创建包裹。
// 一单一包裹由存储层唯一索引保证；重复事件命中 Conflict 时按幂等处理。
func (s *FulfillmentApplicationService) HandleOrderPaidEvent(ctx context.Context, event *orderdomain.OrderPaid) error {
	ctx, span := s.tracer.Start(ctx, "app.HandleOrderPaidEvent", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(attribute.String("order.id", event.OrderID))

	pkg, err := domain.NewPackage(uuid.New().String(), event.OrderID, event.UserID, s.defaultCarrier)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		if apperrors.IsCode(err, apperrors.CodeConflict) {
			logger.Ctx(ctx).Info().Str("order_id", event.OrderID).Msg("package already exists for order, skipping duplicate event")
			return nil
		}
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Str("package_id", pkg.ID).Str("order_id", pkg.OrderID).Msg("package created")
	return nil
}

// CreatePackage 管理端手工为订单补建包裹（通常由支付事件自动创建）
func (s *FulfillmentApplicationService) CreatePackage(ctx context.Context, orderID, userID string, actor identity.Actor) (*PackageDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.CreatePackage")
	defer span.End()

	if !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only admins can create packages")
	}

	pkg, err := domain.NewPackage(uuid.New().String(), orderID, userID, s.defaultCarrier)
	if err != nil {
		return nil, err
	}
	if err := s.packageRepo.Create(ctx, pkg); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ToPackageDTO(pkg), nil
}

// MarkPreparing 管理员开始备货
func (s *FulfillmentApplicationService) MarkPreparing(ctx context.Context, packageID string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.MarkPreparing")
	defer span.End()
	span.SetAttributes(attribute.String("package.id", packageID))

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can prepare packages")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := pkg.Status
	if err := pkg.MarkPreparing(actor.UserID); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChange(ctx, pkg, old)
	return nil
}

// SetMeasurements 录入称重量方，齐全后包裹自动进入 ReadyToShip
func (s *FulfillmentApplicationService) SetMeasurements(ctx context.Context, packageID string, req *SetMeasurementsRequest, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.SetMeasurements")
	defer span.End()
	span.SetAttributes(attribute.String("package.id", packageID))

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can set measurements")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := pkg.Status
	if err := pkg.SetMeasurements(req.WeightGrams, req.Dimensions); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChange(ctx, pkg, old)
	return nil
}

// GenerateLabel 调用承运商生成面单并把包裹推进到 Shipped。
// 面单字段与状态翻转在同一次持久化中落库；承运商失败时包裹停留在
// ReadyToShip，不留任何半成品状态。
func (s *FulfillmentApplicationService) GenerateLabel(ctx context.Context, packageID string, actor identity.Actor) (*PackageDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.GenerateLabel")
	defer span.End()
	span.SetAttributes(attribute.String("package.id", packageID))

	if !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only admins can generate labels")
	}

	// 跨实例互斥：同一包裹同一时刻只允许一次面单生成
	if s.zkConn != nil {
		lock, err := zookeeper.NewDistributedLock(s.zkConn, "package-"+packageID)
		if err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to init label lock", err)
		}
		if err := lock.Lock(); err != nil {
			span.RecordError(err)
			return nil, apperrors.Wrap(apperrors.CodeInternal, "failed to acquire label lock", err)
		}
		defer lock.Unlock()
	}

	// 锁内重新加载，拿到的是当前最新状态
	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pkg.Status != domain.PackageReadyToShip {
		return nil, apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s is %s, label can only be generated when ready to ship", pkg.ID, pkg.Status)
	}
	if !s.carrier.SupportsCarrier(pkg.Carrier) {
		return nil, apperrors.Newf(apperrors.CodeValidation, "carrier %q is not supported", pkg.Carrier)
	}

	label, err := s.carrier.GenerateLabel(ctx, port.LabelRequest{
		PackageID:   pkg.ID,
		OrderID:     pkg.OrderID,
		Carrier:     pkg.Carrier,
		WeightGrams: pkg.WeightGrams,
		Length:      pkg.Dimensions.Length,
		Width:       pkg.Dimensions.Width,
		Height:      pkg.Dimensions.Height,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "carrier label generation failed")
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "carrier unavailable", err)
	}

	old := pkg.Status
	if err := pkg.MarkShipped(label.TrackingNumber, label.LabelURL); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		// 面单已出但落库失败：取消运单，避免出现无记录的面单
		logger.Ctx(ctx).Error().Err(err).Str("package_id", pkg.ID).Msg("persist failed after label generation, cancelling shipment")
		if cancelErr := s.carrier.CancelShipment(ctx, label.TrackingNumber); cancelErr != nil {
			logger.Ctx(ctx).Error().Err(cancelErr).Str("tracking", label.TrackingNumber).Msg("failed to cancel orphaned shipment")
		}
		span.RecordError(err)
		return nil, err
	}

	s.publishStatusChange(ctx, pkg, old)
	logger.Ctx(ctx).Info().Str("package_id", pkg.ID).Str("tracking", pkg.TrackingNumber).Msg("label generated, package shipped")
	return ToPackageDTO(pkg), nil
}

// MarkDelivered 承运商回调或管理员确认签收
func (s *FulfillmentApplicationService) MarkDelivered(ctx context.Context, packageID string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.MarkDelivered")
	defer span.End()

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can mark packages delivered")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := pkg.Status
	if err := pkg.MarkDelivered(); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChange(ctx, pkg, old)
	return nil
}

// MarkException 把包裹置为承运异常
func (s *FulfillmentApplicationService) MarkException(ctx context.Context, packageID, note string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.MarkException")
	defer span.End()

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can flag exceptions")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := pkg.Status
	if err := pkg.MarkException(note); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChange(ctx, pkg, old)
	return nil
}

// RecoverFromException 管理员把异常包裹拉回备货
func (s *FulfillmentApplicationService) RecoverFromException(ctx context.Context, packageID string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.RecoverFromException")
	defer span.End()

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can recover packages")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}

	old := pkg.Status
	if err := pkg.RecoverFromException(actor.UserID); err != nil {
		span.RecordError(err)
		return err
	}
	if err := s.packageRepo.Save(ctx, pkg); err != nil {
		span.RecordError(err)
		return err
	}

	s.publishStatusChange(ctx, pkg, old)
	return nil
}

// DeletePackage 删除包裹。
// 策略：只允许删除尚未进入履约（Pending）或处于 Exception 的包裹。
func (s *FulfillmentApplicationService) DeletePackage(ctx context.Context, packageID string, actor identity.Actor) error {
	ctx, span := s.tracer.Start(ctx, "app.DeletePackage")
	defer span.End()

	if !actor.IsAdmin {
		return apperrors.New(apperrors.CodeUnauthorized, "only admins can delete packages")
	}

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if !pkg.CanDelete() {
		return apperrors.Newf(apperrors.CodeInvalidTransition,
			"package %s is %s, only pending or exception packages can be deleted", pkg.ID, pkg.Status)
	}
	return s.packageRepo.Delete(ctx, packageID)
}

// GetPackage 查询包裹，所有者或管理员可见
func (s *FulfillmentApplicationService) GetPackage(ctx context.Context, packageID string, actor identity.Actor) (*PackageDTO, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetPackage")
	defer span.End()

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pkg.UserID != actor.UserID && !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not allowed to view this package")
	}
	return ToPackageDTO(pkg), nil
}

// GetTracking 透传承运商轨迹
func (s *FulfillmentApplicationService) GetTracking(ctx context.Context, packageID string, actor identity.Actor) ([]port.TrackingEvent, error) {
	ctx, span := s.tracer.Start(ctx, "app.GetTracking")
	defer span.End()

	pkg, err := s.packageRepo.FindByID(ctx, packageID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if pkg.UserID != actor.UserID && !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not allowed to view this package")
	}
	if pkg.TrackingNumber == "" {
		return nil, apperrors.Newf(apperrors.CodeValidation, "package %s has no tracking number yet", pkg.ID)
	}

	events, err := s.carrier.GetTracking(ctx, pkg.TrackingNumber)
	if err != nil {
		span.RecordError(err)
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "carrier unavailable", err)
	}
	return events, nil
}

// publishStatusChange 发布包裹状态事件，失败只记录
func (s *FulfillmentApplicationService) publishStatusChange(ctx context.Context, pkg *domain.Package, old domain.PackageStatus) {
	event := &domain.PackageStatusChanged{
		PackageID:      pkg.ID,
		OrderID:        pkg.OrderID,
		UserID:         pkg.UserID,
		OldStatus:      old,
		NewStatus:      pkg.Status,
		TrackingNumber: pkg.TrackingNumber,
		At:             time.Now(),
	}
	if err := s.producer.PublishStatusChanged(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("package_id", pkg.ID).Msg("failed to publish package status event")
	}
}

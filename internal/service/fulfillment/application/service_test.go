package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/service/fulfillment/domain"
	"storefront/internal/service/fulfillment/domain/port"
	orderdomain "storefront/internal/service/order/domain"
)

var (
	adminActor = identity.Actor{UserID: "admin-1", IsAdmin: true}
	userActor  = identity.Actor{UserID: "u-1"}
)

type fakePackageRepo struct {
	packages map[string]*domain.Package
	saveErr  error
	saves    int
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{packages: make(map[string]*domain.Package)}
}

func (r *fakePackageRepo) Create(_ context.Context, pkg *domain.Package) error {
	for _, existing := range r.packages {
		if existing.OrderID == pkg.OrderID {
			return apperrors.New(apperrors.CodeConflict, "order already has a package")
		}
	}
	r.packages[pkg.ID] = pkg
	return nil
}

func (r *fakePackageRepo) Save(_ context.Context, pkg *domain.Package) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	r.packages[pkg.ID] = pkg
	return nil
}

func (r *fakePackageRepo) FindByID(_ context.Context, id string) (*domain.Package, error) {
	p, ok := r.packages[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "package %s not found", id)
	}
	return p, nil
}

func (r *fakePackageRepo) FindByOrderID(_ context.Context, orderID string) (*domain.Package, error) {
	for _, p := range r.packages {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, apperrors.Newf(apperrors.CodeNotFound, "no package for order %s", orderID)
}

func (r *fakePackageRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.packages[id]; !ok {
		return apperrors.Newf(apperrors.CodeNotFound, "package %s not found", id)
	}
	delete(r.packages, id)
	return nil
}

type fakeCarrier struct {
	labelErr  error
	label     port.Label
	cancelled []string
	supported map[string]bool
}

func (c *fakeCarrier) GenerateLabel(_ context.Context, req port.LabelRequest) (*port.Label, error) {
	if c.labelErr != nil {
		return nil, c.labelErr
	}
	label := c.label
	if label.TrackingNumber == "" {
		label = port.Label{TrackingNumber: "SF123", LabelURL: "https://labels/sf123.pdf"}
	}
	return &label, nil
}

func (c *fakeCarrier) GetTracking(_ context.Context, trackingNumber string) ([]port.TrackingEvent, error) {
	return []port.TrackingEvent{{Status: "IN_TRANSIT", Description: "已揽收"}}, nil
}

func (c *fakeCarrier) CancelShipment(_ context.Context, trackingNumber string) error {
	c.cancelled = append(c.cancelled, trackingNumber)
	return nil
}

func (c *fakeCarrier) SupportsCarrier(carrier string) bool {
	if c.supported == nil {
		return true
	}
	return c.supported[carrier]
}

type fakePackageProducer struct {
	events []*domain.PackageStatusChanged
}

func (p *fakePackageProducer) PublishStatusChanged(_ context.Context, event *domain.PackageStatusChanged) error {
	p.events = append(p.events, event)
	return nil
}

type fulfillmentFixture struct {
	svc      *FulfillmentApplicationService
	repo     *fakePackageRepo
	carrier  *fakeCarrier
	producer *fakePackageProducer
}

func newFulfillmentFixture() *fulfillmentFixture {
	f := &fulfillmentFixture{
		repo:     newFakePackageRepo(),
		carrier:  &fakeCarrier{},
		producer: &fakePackageProducer{},
	}
	f.svc = NewFulfillmentApplicationService(
		f.repo, otel.Tracer("test"), f.carrier, f.producer, nil, "sf-express",
	)
	return f
}

func (f *fulfillmentFixture) seedReadyToShip(t *testing.T) *domain.Package {
	t.Helper()
	pkg, err := domain.NewPackage("pkg-1", "o-1", "u-1", "sf-express")
	require.NoError(t, err)
	require.NoError(t, pkg.MarkPreparing("admin-1"))
	require.NoError(t, pkg.SetMeasurements(1200, domain.Dimensions{Length: 30, Width: 20, Height: 10}))
	f.repo.packages[pkg.ID] = pkg
	return pkg
}

func TestHandleOrderPaidCreatesPackage(t *testing.T) {
	f := newFulfillmentFixture()

	err := f.svc.HandleOrderPaidEvent(context.Background(), &orderdomain.OrderPaid{
		OrderID: "o-1", UserID: "u-1",
	})
	require.NoError(t, err)

	pkg, err := f.repo.FindByOrderID(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PackagePending, pkg.Status)
	assert.Equal(t, "sf-express", pkg.Carrier)
}

func TestHandleOrderPaidIsIdempotent(t *testing.T) {
	f := newFulfillmentFixture()
	event := &orderdomain.OrderPaid{OrderID: "o-1", UserID: "u-1"}

	require.NoError(t, f.svc.HandleOrderPaidEvent(context.Background(), event))
	// 重复投递命中存储层唯一约束，按幂等吞掉
	require.NoError(t, f.svc.HandleOrderPaidEvent(context.Background(), event))
	assert.Len(t, f.repo.packages, 1)
}

func TestGenerateLabelRequiresAdmin(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)

	_, err := f.svc.GenerateLabel(context.Background(), "pkg-1", userActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
}

func TestGenerateLabelRequiresReadyToShip(t *testing.T) {
	f := newFulfillmentFixture()
	pkg, err := domain.NewPackage("pkg-1", "o-1", "u-1", "sf-express")
	require.NoError(t, err)
	f.repo.packages[pkg.ID] = pkg

	_, err = f.svc.GenerateLabel(context.Background(), "pkg-1", adminActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestGenerateLabelUnsupportedCarrier(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)
	f.carrier.supported = map[string]bool{"ups": true}

	_, err := f.svc.GenerateLabel(context.Background(), "pkg-1", adminActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestGenerateLabelCarrierFailureLeavesPackageUntouched(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)
	f.carrier.labelErr = errors.New("carrier timeout")

	_, err := f.svc.GenerateLabel(context.Background(), "pkg-1", adminActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeExternalService))

	pkg, _ := f.repo.FindByID(context.Background(), "pkg-1")
	assert.Equal(t, domain.PackageReadyToShip, pkg.Status)
	assert.Empty(t, pkg.TrackingNumber)
	assert.Zero(t, f.repo.saves)
	assert.Empty(t, f.producer.events)
}

func TestGenerateLabelSuccess(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)

	dto, err := f.svc.GenerateLabel(context.Background(), "pkg-1", adminActor)
	require.NoError(t, err)

	assert.Equal(t, int(domain.PackageShipped), dto.Status)
	assert.Equal(t, "SF123", dto.TrackingNumber)
	assert.Equal(t, "https://labels/sf123.pdf", dto.LabelURL)

	require.Len(t, f.producer.events, 1)
	assert.Equal(t, domain.PackageShipped, f.producer.events[0].NewStatus)
	assert.Equal(t, "SF123", f.producer.events[0].TrackingNumber)
}

func TestGenerateLabelPersistFailureCancelsShipment(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)
	f.repo.saveErr = apperrors.New(apperrors.CodeDatabase, "mysql is down")

	_, err := f.svc.GenerateLabel(context.Background(), "pkg-1", adminActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDatabase))
	assert.Equal(t, []string{"SF123"}, f.carrier.cancelled)
	assert.Empty(t, f.producer.events)
}

func TestDeletePackagePolicy(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)

	err := f.svc.DeletePackage(context.Background(), "pkg-1", adminActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	pkg, err := domain.NewPackage("pkg-2", "o-2", "u-1", "sf-express")
	require.NoError(t, err)
	f.repo.packages[pkg.ID] = pkg

	require.NoError(t, f.svc.DeletePackage(context.Background(), "pkg-2", adminActor))
	_, err = f.repo.FindByID(context.Background(), "pkg-2")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestGetTrackingVisibility(t *testing.T) {
	f := newFulfillmentFixture()
	pkg := f.seedReadyToShip(t)
	require.NoError(t, pkg.MarkShipped("SF123", "https://labels/sf123.pdf"))

	_, err := f.svc.GetTracking(context.Background(), "pkg-1", identity.Actor{UserID: "u-2"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	events, err := f.svc.GetTracking(context.Background(), "pkg-1", userActor)
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestGetTrackingWithoutTrackingNumber(t *testing.T) {
	f := newFulfillmentFixture()
	f.seedReadyToShip(t)

	_, err := f.svc.GetTracking(context.Background(), "pkg-1", userActor)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

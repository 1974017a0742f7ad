package application

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	fulfillment "storefront/internal/service/fulfillment/domain"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/domain/port"
)

// ---- 内存实现的出站端口 ----

type fakeOrderRepo struct {
	orders map[string]*domain.Order
	saves  int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*domain.Order)}
}

func (r *fakeOrderRepo) Save(_ context.Context, order *domain.Order) error {
	r.saves++
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "order %s not found", id)
	}
	return o, nil
}

func (r *fakeOrderRepo) FindByPaymentIntentID(_ context.Context, intentID string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return nil, apperrors.Newf(apperrors.CodeNotFound, "no order for payment intent %s", intentID)
}

func (r *fakeOrderRepo) FindByUserID(_ context.Context, userID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

type fakeCartRepo struct {
	carts   map[string]*domain.Cart
	cleared []string
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: make(map[string]*domain.Cart)}
}

func (r *fakeCartRepo) Get(_ context.Context, userID string) (*domain.Cart, error) {
	if c, ok := r.carts[userID]; ok {
		return c, nil
	}
	return &domain.Cart{UserID: userID}, nil
}

func (r *fakeCartRepo) SetItem(_ context.Context, userID string, item domain.CartItem) error {
	c := r.carts[userID]
	if c == nil {
		c = &domain.Cart{UserID: userID}
		r.carts[userID] = c
	}
	c.Items = append(c.Items, item)
	return nil
}

func (r *fakeCartRepo) RemoveItem(_ context.Context, userID, productID string) error { return nil }

func (r *fakeCartRepo) Clear(_ context.Context, userID string) error {
	r.cleared = append(r.cleared, userID)
	delete(r.carts, userID)
	return nil
}

type fakePaymentGateway struct {
	createErr error
	status    string
	created   int
}

func (g *fakePaymentGateway) CreatePaymentIntent(_ context.Context, amount int64, _ map[string]string) (*port.PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.created++
	return &port.PaymentIntent{ID: "pi-test", ClientSecret: "secret-test", Status: "requires_payment"}, nil
}

func (g *fakePaymentGateway) GetPaymentIntent(_ context.Context, intentID string) (*port.PaymentIntent, error) {
	status := g.status
	if status == "" {
		status = port.PaymentIntentSucceeded
	}
	return &port.PaymentIntent{ID: intentID, Status: status}, nil
}

type fakeReturnPolicy struct {
	eligible bool
	err      error
	lastFact port.ReturnFact
}

func (p *fakeReturnPolicy) Evaluate(_ context.Context, fact port.ReturnFact) (bool, error) {
	p.lastFact = fact
	return p.eligible, p.err
}

type fakeEventProducer struct {
	paid []*domain.OrderPaid
}

func (p *fakeEventProducer) PublishOrderPaid(_ context.Context, event *domain.OrderPaid) error {
	p.paid = append(p.paid, event)
	return nil
}

type fakeNotifier struct {
	events []*domain.OrderStatusChanged
}

func (n *fakeNotifier) SendOrderStatusChanged(_ context.Context, event *domain.OrderStatusChanged) error {
	n.events = append(n.events, event)
	return nil
}

type fixture struct {
	svc      *OrderApplicationService
	orders   *fakeOrderRepo
	carts    *fakeCartRepo
	gateway  *fakePaymentGateway
	policy   *fakeReturnPolicy
	producer *fakeEventProducer
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		orders:   newFakeOrderRepo(),
		carts:    newFakeCartRepo(),
		gateway:  &fakePaymentGateway{},
		policy:   &fakeReturnPolicy{eligible: true},
		producer: &fakeEventProducer{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewOrderApplicationService(
		f.orders, f.carts, 30*24*time.Hour, otel.Tracer("test"),
		f.gateway, f.policy, f.producer, f.notifier,
	)
	return f
}

func (f *fixture) seedCart(t *testing.T, userID string) {
	t.Helper()
	require.NoError(t, f.carts.SetItem(context.Background(), userID, domain.CartItem{
		ProductID: "p-1", Name: "机械键盘", UnitPrice: 39900, Quantity: 1,
	}))
}

func (f *fixture) seedOrder(t *testing.T, status domain.OrderStatus) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder("o-1", "u-1", []domain.OrderItem{
		{ProductID: "p-1", Name: "机械键盘", UnitPrice: 39900, Quantity: 1},
	}, domain.Address{Line1: "人民路1号", City: "上海", Province: "上海", PostalCode: "200000", Country: "CN"}, "pi-test")
	require.NoError(t, err)

	if status >= domain.OrderProcessing && status != domain.OrderCancelled {
		require.NoError(t, order.MarkPaid())
	}
	if status >= domain.OrderShipped && status != domain.OrderCancelled {
		require.NoError(t, order.TransitionTo(domain.OrderShipped, f.svc.returnWindow))
	}
	if status >= domain.OrderDelivered && status != domain.OrderCancelled {
		require.NoError(t, order.TransitionTo(domain.OrderDelivered, f.svc.returnWindow))
	}
	f.orders.orders[order.ID] = order
	return order
}

// ---- 用例 ----

func TestCheckout(t *testing.T) {
	f := newFixture()
	f.seedCart(t, "u-1")

	resp, err := f.svc.Checkout(context.Background(), &CheckoutRequest{
		UserID:          "u-1",
		ShippingAddress: domain.Address{Line1: "人民路1号", City: "上海", Province: "上海", PostalCode: "200000", Country: "CN"},
	})
	require.NoError(t, err)

	assert.Equal(t, "secret-test", resp.ClientSecret)
	assert.Equal(t, int(domain.OrderPending), resp.Status)
	assert.Equal(t, int64(39900), resp.TotalAmount)

	saved, err := f.orders.FindByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "pi-test", saved.PaymentIntentID)
	assert.Equal(t, []string{"u-1"}, f.carts.cleared)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Checkout(context.Background(), &CheckoutRequest{UserID: "u-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Zero(t, f.orders.saves)
}

func TestCheckoutGatewayFailureLeavesNoState(t *testing.T) {
	f := newFixture()
	f.seedCart(t, "u-1")
	f.gateway.createErr = errors.New("connection refused")

	_, err := f.svc.Checkout(context.Background(), &CheckoutRequest{UserID: "u-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeExternalService))
	assert.Zero(t, f.orders.saves)
	assert.Empty(t, f.carts.cleared)
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderPending)

	confirmed, err := f.svc.ConfirmPayment(context.Background(), "pi-test")
	require.NoError(t, err)
	assert.True(t, confirmed)

	order, _ := f.orders.FindByID(context.Background(), "o-1")
	assert.Equal(t, domain.OrderProcessing, order.Status)
	require.Len(t, f.producer.paid, 1)
	assert.Equal(t, "o-1", f.producer.paid[0].OrderID)
	require.Len(t, f.notifier.events, 1)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderPending)

	confirmed, err := f.svc.ConfirmPayment(context.Background(), "pi-test")
	require.NoError(t, err)
	require.True(t, confirmed)

	confirmed, err = f.svc.ConfirmPayment(context.Background(), "pi-test")
	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.Len(t, f.producer.paid, 1)
}

func TestConfirmPaymentGatewayNotSucceeded(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderPending)
	f.gateway.status = "requires_payment"

	confirmed, err := f.svc.ConfirmPayment(context.Background(), "pi-test")
	assert.False(t, confirmed)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	order, _ := f.orders.FindByID(context.Background(), "o-1")
	assert.Equal(t, domain.OrderPending, order.Status)
}

func TestUpdateOrderStatusRequiresAdmin(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderProcessing)

	err := f.svc.UpdateOrderStatus(context.Background(), "o-1", domain.OrderShipped, identity.Actor{UserID: "u-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	err = f.svc.UpdateOrderStatus(context.Background(), "o-1", domain.OrderShipped, identity.Actor{UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, f.notifier.events, 1)
}

func TestRequestReturnPolicyRejects(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderDelivered)
	f.policy.eligible = false

	err := f.svc.RequestReturn(context.Background(), "o-1", "不想要了", identity.Actor{UserID: "u-1"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, "o-1", f.policy.lastFact.OrderID)
}

func TestRequestReturnOwnerOnly(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderDelivered)

	err := f.svc.RequestReturn(context.Background(), "o-1", "不想要了", identity.Actor{UserID: "u-2"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	err = f.svc.RequestReturn(context.Background(), "o-1", "不想要了", identity.Actor{UserID: "u-1"})
	require.NoError(t, err)
	order, _ := f.orders.FindByID(context.Background(), "o-1")
	assert.Equal(t, domain.OrderReturnRequested, order.Status)
}

func TestHandlePackageShippedAttachesTracking(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderProcessing)

	err := f.svc.HandlePackageStatusEvent(context.Background(), &fulfillment.PackageStatusChanged{
		PackageID:      "pkg-1",
		OrderID:        "o-1",
		NewStatus:      fulfillment.PackageShipped,
		TrackingNumber: "SF123456",
	})
	require.NoError(t, err)

	order, _ := f.orders.FindByID(context.Background(), "o-1")
	assert.Equal(t, domain.OrderShipped, order.Status)
	assert.Equal(t, "SF123456", order.TrackingNumber)
	assert.Len(t, f.notifier.events, 1)
}

func TestHandlePackageEventSkipsAdvancedOrder(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderDelivered)
	saves := f.orders.saves

	// 管理员已手工推进过订单，包裹事件晚到，静默跳过
	err := f.svc.HandlePackageStatusEvent(context.Background(), &fulfillment.PackageStatusChanged{
		OrderID:   "o-1",
		NewStatus: fulfillment.PackageShipped,
	})
	require.NoError(t, err)
	assert.Equal(t, saves, f.orders.saves)
}

func TestHandlePackageEventIgnoresIrrelevantStatus(t *testing.T) {
	f := newFixture()
	f.seedOrder(t, domain.OrderProcessing)

	err := f.svc.HandlePackageStatusEvent(context.Background(), &fulfillment.PackageStatusChanged{
		OrderID:   "o-1",
		NewStatus: fulfillment.PackagePreparing,
	})
	require.NoError(t, err)

	order, _ := f.orders.FindByID(context.Background(), "o-1")
	assert.Equal(t, domain.OrderProcessing, order.Status)
}

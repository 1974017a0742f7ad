package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/apperrors"
)

func testItems() []OrderItem {
	return []OrderItem{
		{ProductID: "p-1", Name: "机械键盘", UnitPrice: 39900, Quantity: 1},
		{ProductID: "p-2", Name: "鼠标垫", UnitPrice: 2500, Quantity: 2},
	}
}

func testAddress() Address {
	return Address{Line1: "人民路1号", City: "上海", Province: "上海", PostalCode: "200000", Country: "CN"}
}

func newDeliveredOrder(t *testing.T, window time.Duration) *Order {
	t.Helper()
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid())
	require.NoError(t, order.TransitionTo(OrderShipped, window))
	require.NoError(t, order.TransitionTo(OrderDelivered, window))
	return order
}

func TestNewOrderComputesTotal(t *testing.T) {
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)

	assert.Equal(t, int64(39900+2*2500), order.TotalAmount)
	assert.Equal(t, OrderPending, order.Status)
	assert.Equal(t, PaymentPending, order.PaymentStatus)
	assert.Equal(t, ReturnNone, order.ReturnStatus)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("o-1", "u-1", nil, testAddress(), "pi-1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = NewOrder("", "u-1", testItems(), testAddress(), "pi-1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	bad := testItems()
	bad[0].Quantity = 0
	_, err = NewOrder("o-1", "u-1", bad, testAddress(), "pi-1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestMarkPaidOnlyOnce(t *testing.T) {
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)

	require.NoError(t, order.MarkPaid())
	assert.Equal(t, OrderProcessing, order.Status)
	assert.Equal(t, PaymentCompleted, order.PaymentStatus)
	assert.True(t, order.IsPaymentConfirmed())

	err = order.MarkPaid()
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestTransitionToRejectsIllegalMove(t *testing.T) {
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)

	err = order.TransitionTo(OrderDelivered, 30*24*time.Hour)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, OrderPending, order.Status)
}

func TestDeliveredSetsReturnDeadlineOnce(t *testing.T) {
	window := 30 * 24 * time.Hour
	order := newDeliveredOrder(t, window)

	require.False(t, order.DeliveredAt.IsZero())
	firstDeadline := order.ReturnDeadline
	assert.WithinDuration(t, order.DeliveredAt.Add(window), firstDeadline, time.Second)

	// 退货驳回回到 Delivered，窗口不重置
	require.NoError(t, order.RequestReturn("尺寸不合适", time.Now()))
	require.NoError(t, order.TransitionReturn(ReturnRejected))
	assert.Equal(t, OrderDelivered, order.Status)
	assert.Equal(t, firstDeadline, order.ReturnDeadline)
}

func TestRequestReturnRequiresDelivered(t *testing.T) {
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)
	require.NoError(t, order.MarkPaid())
	require.NoError(t, order.TransitionTo(OrderShipped, 0))

	err = order.RequestReturn("不想要了", time.Now())
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, OrderShipped, order.Status)
	assert.Equal(t, ReturnNone, order.ReturnStatus)
}

func TestRequestReturnAfterDeadline(t *testing.T) {
	order := newDeliveredOrder(t, 30*24*time.Hour)

	late := order.ReturnDeadline.Add(time.Hour)
	err := order.RequestReturn("太晚了", late)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestReturnFlowToRefund(t *testing.T) {
	order := newDeliveredOrder(t, 30*24*time.Hour)

	require.NoError(t, order.RequestReturn("有瑕疵", time.Now()))
	assert.Equal(t, OrderReturnRequested, order.Status)
	assert.Equal(t, ReturnRequested, order.ReturnStatus)

	require.NoError(t, order.TransitionReturn(ReturnApproved))
	require.NoError(t, order.TransitionReturn(ReturnInTransit))
	require.NoError(t, order.TransitionReturn(ReturnReceived))
	require.NoError(t, order.TransitionReturn(ReturnRefunded))

	assert.Equal(t, OrderReturned, order.Status)
	assert.Equal(t, PaymentRefunded, order.PaymentStatus)

	// 终态之后不允许再动
	err := order.TransitionReturn(ReturnRequested)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestReturnFlowSkipNotAllowed(t *testing.T) {
	order := newDeliveredOrder(t, 30*24*time.Hour)
	require.NoError(t, order.RequestReturn("有瑕疵", time.Now()))

	err := order.TransitionReturn(ReturnRefunded)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
	assert.Equal(t, ReturnRequested, order.ReturnStatus)
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderProcessing, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderShipped, false},
		{OrderProcessing, OrderShipped, true},
		{OrderProcessing, OrderCancelled, true},
		{OrderProcessing, OrderDelivered, false},
		{OrderShipped, OrderDelivered, true},
		{OrderShipped, OrderCancelled, false},
		{OrderDelivered, OrderReturnRequested, true},
		{OrderDelivered, OrderPending, false},
		{OrderReturnRequested, OrderReturned, true},
		{OrderReturnRequested, OrderDelivered, true},
		{OrderReturnRequested, OrderShipped, false},
		{OrderReturned, OrderPending, false},
		{OrderCancelled, OrderProcessing, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestReturnStatusTransitions(t *testing.T) {
	cases := []struct {
		from    ReturnStatus
		to      ReturnStatus
		allowed bool
	}{
		{ReturnRequested, ReturnApproved, true},
		{ReturnRequested, ReturnRejected, true},
		{ReturnRequested, ReturnReceived, false},
		{ReturnApproved, ReturnInTransit, true},
		{ReturnApproved, ReturnRefunded, false},
		{ReturnInTransit, ReturnReceived, true},
		{ReturnReceived, ReturnRefunded, true},
		{ReturnRefunded, ReturnRequested, false},
		{ReturnRejected, ReturnApproved, false},
		{ReturnNone, ReturnApproved, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestStatusOrdinalsAreStable(t *testing.T) {
	// DTO 以小整数序列化状态，枚举顺序是对外契约
	assert.Equal(t, 0, int(OrderPending))
	assert.Equal(t, 1, int(OrderProcessing))
	assert.Equal(t, 2, int(OrderShipped))
	assert.Equal(t, 3, int(OrderDelivered))
	assert.Equal(t, 4, int(OrderCancelled))
	assert.Equal(t, 5, int(OrderReturnRequested))
	assert.Equal(t, 6, int(OrderReturned))

	assert.Equal(t, 0, int(ReturnNone))
	assert.Equal(t, 1, int(ReturnRequested))
	assert.Equal(t, 6, int(ReturnRefunded))
}

package rule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/service/order/domain/port"
)

func TestEvaluateWindowAndAmount(t *testing.T) {
	policy, err := NewCELReturnPolicy("daysSinceDelivery <= 30.0 && totalAmount < 500000")
	require.NoError(t, err)

	cases := []struct {
		name string
		fact port.ReturnFact
		want bool
	}{
		{"within window and amount", port.ReturnFact{TotalAmount: 39900, DaysSinceDelivery: 3.5}, true},
		{"on window boundary", port.ReturnFact{TotalAmount: 39900, DaysSinceDelivery: 30.0}, true},
		{"past window", port.ReturnFact{TotalAmount: 39900, DaysSinceDelivery: 31.0}, false},
		{"amount too high", port.ReturnFact{TotalAmount: 500000, DaysSinceDelivery: 1.0}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := policy.Evaluate(context.Background(), tc.fact)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluateUsesAllFactFields(t *testing.T) {
	policy, err := NewCELReturnPolicy(`orderId != "" && itemCount <= 10`)
	require.NoError(t, err)

	got, err := policy.Evaluate(context.Background(), port.ReturnFact{OrderID: "o-1", ItemCount: 3})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = policy.Evaluate(context.Background(), port.ReturnFact{OrderID: "o-1", ItemCount: 11})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestInvalidExpressionRejectedAtConstruction(t *testing.T) {
	_, err := NewCELReturnPolicy("daysSinceDelivery <=")
	assert.Error(t, err)

	_, err = NewCELReturnPolicy("unknownVariable > 1")
	assert.Error(t, err)
}

func TestNonBooleanExpressionRejected(t *testing.T) {
	_, err := NewCELReturnPolicy("totalAmount + 1")
	assert.Error(t, err)
}

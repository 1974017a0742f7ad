package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/apperrors"
)

func TestNewWarrantyClaimRequiresDeliveredOrder(t *testing.T) {
	order, err := NewOrder("o-1", "u-1", testItems(), testAddress(), "pi-1")
	require.NoError(t, err)

	_, err = NewWarrantyClaim("c-1", order, "p-1", "开机异响")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	delivered := newDeliveredOrder(t, 30*24*time.Hour)
	claim, err := NewWarrantyClaim("c-1", delivered, "p-1", "开机异响")
	require.NoError(t, err)
	assert.Equal(t, ClaimFiled, claim.Status)
	assert.Equal(t, delivered.UserID, claim.UserID)
}

func TestNewWarrantyClaimRejectsForeignProduct(t *testing.T) {
	delivered := newDeliveredOrder(t, 30*24*time.Hour)

	_, err := NewWarrantyClaim("c-1", delivered, "p-999", "不是这单的商品")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestWarrantyClaimTransitions(t *testing.T) {
	delivered := newDeliveredOrder(t, 30*24*time.Hour)
	claim, err := NewWarrantyClaim("c-1", delivered, "p-1", "开机异响")
	require.NoError(t, err)

	// Filed 不能直接 Replaced
	err = claim.TransitionTo(ClaimReplaced)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))

	require.NoError(t, claim.TransitionTo(ClaimApproved))
	require.NoError(t, claim.TransitionTo(ClaimRefunded))

	// Refunded 是终态
	err = claim.TransitionTo(ClaimApproved)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

func TestWarrantyClaimRejection(t *testing.T) {
	delivered := newDeliveredOrder(t, 30*24*time.Hour)
	claim, err := NewWarrantyClaim("c-1", delivered, "p-2", "按键失灵")
	require.NoError(t, err)

	require.NoError(t, claim.TransitionTo(ClaimRejected))
	err = claim.TransitionTo(ClaimApproved)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidTransition))
}

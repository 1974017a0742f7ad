package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/apperrors"
)

func newTestTicket(t *testing.T) *Ticket {
	t.Helper()
	ticket, err := NewTicket("t-1", "u-1", "o-1", "收到的键盘缺一个键帽", "右Shift键帽不在包装里", PriorityNormal)
	require.NoError(t, err)
	return ticket
}

func TestNewTicket(t *testing.T) {
	ticket := newTestTicket(t)

	assert.Equal(t, TicketOpen, ticket.Status)
	require.Len(t, ticket.Messages, 1)
	assert.Equal(t, "u-1", ticket.Messages[0].SenderID)
	assert.False(t, ticket.Messages[0].IsAdmin)
}

func TestNewTicketValidation(t *testing.T) {
	_, err := NewTicket("t-1", "", "", "subject", "body", PriorityNormal)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = NewTicket("t-1", "u-1", "", "", "body", PriorityNormal)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = NewTicket("t-1", "u-1", "", "subject", "", PriorityNormal)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestAdminReplyMovesOpenToInProgress(t *testing.T) {
	ticket := newTestTicket(t)

	msg, err := ticket.AddMessage("admin-1", true, "正在为您补发")
	require.NoError(t, err)
	assert.True(t, msg.IsAdmin)
	assert.Equal(t, TicketInProgress, ticket.Status)

	// 已在处理中的工单，再回复不改状态
	_, err = ticket.AddMessage("admin-1", true, "已发出")
	require.NoError(t, err)
	assert.Equal(t, TicketInProgress, ticket.Status)
}

func TestCustomerReplyReopensResolvedTicket(t *testing.T) {
	ticket := newTestTicket(t)
	ticket.SetStatus(TicketResolved)

	_, err := ticket.AddMessage("u-1", false, "补发的键帽也是坏的")
	require.NoError(t, err)
	assert.Equal(t, TicketInProgress, ticket.Status)

	ticket.SetStatus(TicketClosed)
	_, err = ticket.AddMessage("u-1", false, "还没解决")
	require.NoError(t, err)
	assert.Equal(t, TicketInProgress, ticket.Status)
}

func TestCustomerReplyKeepsWaitingCustomer(t *testing.T) {
	ticket := newTestTicket(t)
	ticket.SetStatus(TicketWaitingCustomer)

	_, err := ticket.AddMessage("u-1", false, "补充订单号 o-1")
	require.NoError(t, err)
	assert.Equal(t, TicketWaitingCustomer, ticket.Status)
}

func TestAddMessagePreservesOrder(t *testing.T) {
	ticket := newTestTicket(t)
	_, err := ticket.AddMessage("admin-1", true, "第二条")
	require.NoError(t, err)
	_, err = ticket.AddMessage("u-1", false, "第三条")
	require.NoError(t, err)

	require.Len(t, ticket.Messages, 3)
	assert.Equal(t, "第二条", ticket.Messages[1].Body)
	assert.Equal(t, "第三条", ticket.Messages[2].Body)
}

func TestAddMessageRejectsEmptyBody(t *testing.T) {
	ticket := newTestTicket(t)
	_, err := ticket.AddMessage("u-1", false, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Len(t, ticket.Messages, 1)
}

func TestSetStatusAllowsAnyTransition(t *testing.T) {
	ticket := newTestTicket(t)

	// 工单可以反复关闭和重开
	ticket.SetStatus(TicketClosed)
	assert.Equal(t, TicketClosed, ticket.Status)
	ticket.SetStatus(TicketOpen)
	assert.Equal(t, TicketOpen, ticket.Status)
}

func TestAssign(t *testing.T) {
	ticket := newTestTicket(t)
	ticket.Assign("admin-2")
	assert.Equal(t, "admin-2", ticket.AssignedToAdminID)
	assert.Equal(t, TicketOpen, ticket.Status)
}

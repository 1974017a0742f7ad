package notification

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "storefront/internal/service/order/domain"
	supportdomain "storefront/internal/service/support/domain"
)

type fakeMailGateway struct {
	sent    []Mail
	sendErr error
}

func (g *fakeMailGateway) Send(_ context.Context, mail Mail) error {
	if g.sendErr != nil {
		return g.sendErr
	}
	g.sent = append(g.sent, mail)
	return nil
}

func TestOrderStatusChangeSendsMail(t *testing.T) {
	gateway := &fakeMailGateway{}
	notifier := NewNotifier(gateway)

	notifier.HandleOrderStatusChanged(context.Background(), &orderdomain.OrderStatusChanged{
		OrderID:   "o-1",
		UserID:    "u-1",
		OldStatus: orderdomain.OrderPending,
		NewStatus: orderdomain.OrderProcessing,
	})

	require.Len(t, gateway.sent, 1)
	assert.Equal(t, "u-1", gateway.sent[0].To)
	assert.Contains(t, gateway.sent[0].Body, "o-1")
}

func TestMailFailureIsSwallowed(t *testing.T) {
	gateway := &fakeMailGateway{sendErr: errors.New("smtp relay down")}
	notifier := NewNotifier(gateway)

	// 投递失败只记录，不 panic 也不冒泡
	notifier.HandleOrderStatusChanged(context.Background(), &orderdomain.OrderStatusChanged{
		OrderID: "o-1", UserID: "u-1", NewStatus: orderdomain.OrderShipped,
	})
	assert.Empty(t, gateway.sent)
}

func TestAdminTicketReplyMailsTicketOwner(t *testing.T) {
	gateway := &fakeMailGateway{}
	notifier := NewNotifier(gateway)

	notifier.HandleTicketMessage(context.Background(), &supportdomain.TicketMessageAdded{
		TicketID: "t-1",
		UserID:   "u-1",
		SenderID: "admin-1",
		IsAdmin:  true,
		Body:     "已为您补发，运单号 SF123",
	})

	require.Len(t, gateway.sent, 1)
	assert.Equal(t, "u-1", gateway.sent[0].To)
	assert.Contains(t, gateway.sent[0].Subject, "t-1")
	assert.Equal(t, "已为您补发，运单号 SF123", gateway.sent[0].Body)
}

func TestCustomerTicketMessageSendsNoMail(t *testing.T) {
	gateway := &fakeMailGateway{}
	notifier := NewNotifier(gateway)

	notifier.HandleTicketMessage(context.Background(), &supportdomain.TicketMessageAdded{
		TicketID: "t-1",
		UserID:   "u-1",
		SenderID: "u-1",
		IsAdmin:  false,
		Body:     "补充一下订单号",
	})
	assert.Empty(t, gateway.sent)
}

package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/service/support/domain"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) Save(_ context.Context, ticket *domain.Ticket) error {
	r.tickets[ticket.ID] = ticket
	return nil
}

func (r *fakeTicketRepo) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	t, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.CodeNotFound, "ticket %s not found", id)
	}
	return t, nil
}

func (r *fakeTicketRepo) FindByUserID(_ context.Context, userID string) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) FindByStatus(_ context.Context, status domain.TicketStatus) ([]*domain.Ticket, error) {
	var out []*domain.Ticket
	for _, t := range r.tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeTicketProducer struct {
	events []*domain.TicketMessageAdded
}

func (p *fakeTicketProducer) PublishMessageAdded(_ context.Context, event *domain.TicketMessageAdded) error {
	p.events = append(p.events, event)
	return nil
}

func newSupportFixture() (*SupportApplicationService, *fakeTicketRepo, *fakeTicketProducer) {
	repo := newFakeTicketRepo()
	producer := &fakeTicketProducer{}
	return NewSupportApplicationService(repo, producer), repo, producer
}

var (
	owner = identity.Actor{UserID: "u-1"}
	admin = identity.Actor{UserID: "admin-1", IsAdmin: true}
)

func createTicket(t *testing.T, svc *SupportApplicationService) *TicketDTO {
	t.Helper()
	dto, err := svc.CreateTicket(context.Background(), owner, &CreateTicketRequest{
		OrderID:  "o-1",
		Subject:  "包裹迟迟未到",
		Body:     "下单一周了还没发货",
		Priority: int(domain.PriorityHigh),
	})
	require.NoError(t, err)
	return dto
}

func TestCreateTicket(t *testing.T) {
	svc, repo, _ := newSupportFixture()
	dto := createTicket(t, svc)

	assert.Equal(t, int(domain.TicketOpen), dto.Status)
	assert.Equal(t, int(domain.PriorityHigh), dto.Priority)
	require.Len(t, dto.Messages, 1)
	assert.Equal(t, "u-1", dto.Messages[0].SenderID)

	stored, err := repo.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "o-1", stored.OrderID)
}

func TestAddMessageRequiresOwnerOrAdmin(t *testing.T) {
	svc, _, producer := newSupportFixture()
	dto := createTicket(t, svc)

	_, err := svc.AddMessage(context.Background(), identity.Actor{UserID: "u-2"}, dto.ID, &AddMessageRequest{Body: "蹭个楼"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))
	assert.Empty(t, producer.events)

	updated, err := svc.AddMessage(context.Background(), admin, dto.ID, &AddMessageRequest{Body: "已催仓库"})
	require.NoError(t, err)
	assert.Equal(t, int(domain.TicketInProgress), updated.Status)
}

func TestAddMessagePublishesEventForTicketOwner(t *testing.T) {
	svc, _, producer := newSupportFixture()
	dto := createTicket(t, svc)

	_, err := svc.AddMessage(context.Background(), admin, dto.ID, &AddMessageRequest{Body: "已催仓库"})
	require.NoError(t, err)

	// 事件携带工单所有者，推送网关据此路由到用户的连接
	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, dto.ID, event.TicketID)
	assert.Equal(t, "u-1", event.UserID)
	assert.Equal(t, "admin-1", event.SenderID)
	assert.True(t, event.IsAdmin)
}

func TestUpdateTicketStatus(t *testing.T) {
	svc, _, _ := newSupportFixture()
	dto := createTicket(t, svc)

	_, err := svc.UpdateTicketStatus(context.Background(), owner, dto.ID, domain.TicketClosed)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	_, err = svc.UpdateTicketStatus(context.Background(), admin, dto.ID, domain.TicketStatus(99))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	updated, err := svc.UpdateTicketStatus(context.Background(), admin, dto.ID, domain.TicketResolved)
	require.NoError(t, err)
	assert.Equal(t, int(domain.TicketResolved), updated.Status)
}

func TestAssignTicket(t *testing.T) {
	svc, _, _ := newSupportFixture()
	dto := createTicket(t, svc)

	_, err := svc.AssignTicket(context.Background(), admin, dto.ID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	updated, err := svc.AssignTicket(context.Background(), admin, dto.ID, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, "admin-2", updated.AssignedToAdminID)
}

func TestGetTicketVisibility(t *testing.T) {
	svc, _, _ := newSupportFixture()
	dto := createTicket(t, svc)

	_, err := svc.GetTicket(context.Background(), identity.Actor{UserID: "u-2"}, dto.ID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnauthorized))

	got, err := svc.GetTicket(context.Background(), owner, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
}

func TestListTickets(t *testing.T) {
	svc, _, _ := newSupportFixture()
	createTicket(t, svc)
	resolvedStatus := domain.TicketResolved

	// 普通用户只能看到自己的
	mine, err := svc.ListTickets(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	other, err := svc.ListTickets(context.Background(), identity.Actor{UserID: "u-2"}, nil)
	require.NoError(t, err)
	assert.Empty(t, other)

	// 管理员按状态过滤全量
	resolved, err := svc.ListTickets(context.Background(), admin, &resolvedStatus)
	require.NoError(t, err)
	assert.Empty(t, resolved)

	openStatus := domain.TicketOpen
	open, err := svc.ListTickets(context.Background(), admin, &openStatus)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

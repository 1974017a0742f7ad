package application

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/identity"
	"storefront/internal/pkg/logger"
	"storefront/internal/service/support/domain"
	"storefront/internal/service/support/domain/port"
)

// SupportApplicationService 编排客服工单的用例
type SupportApplicationService struct {
	ticketRepo domain.TicketRepository
	producer   port.TicketEventProducer
	tracer     trace.Tracer
}

func NewSupportApplicationService(
	ticketRepo domain.TicketRepository,
	producer port.TicketEventProducer,
) *SupportApplicationService {
	return &SupportApplicationService{
		ticketRepo: ticketRepo,
		producer:   producer,
		tracer:     otel.Tracer("support-application-service"),
	}
}

// CreateTicket 创建工单，首条消息即为用户的问题描述
func (s *SupportApplicationService) CreateTicket(ctx context.Context, actor identity.Actor, req *CreateTicketRequest) (*TicketDTO, error) {
	ctx, span := s.tracer.Start(ctx, "SupportService.CreateTicket")
	defer span.End()

	ticket, err := domain.NewTicket(uuid.NewString(), actor.UserID, req.OrderID, req.Subject, req.Body, domain.Priority(req.Priority))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("ticket.id", ticket.ID))

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create ticket")
		return nil, err
	}

	logger.Ctx(ctx).Info().Str("ticket_id", ticket.ID).Str("user_id", actor.UserID).Msg("support ticket created")
	return ToTicketDTO(ticket), nil
}

// AddMessage 给工单追加消息。仅工单所有者与管理员可发言；
// 客户回复会把已解决/已关闭的工单重新置为处理中。
func (s *SupportApplicationService) AddMessage(ctx context.Context, actor identity.Actor, ticketID string, req *AddMessageRequest) (*TicketDTO, error) {
	ctx, span := s.tracer.Start(ctx, "SupportService.AddMessage")
	defer span.End()
	span.SetAttributes(attribute.String("ticket.id", ticketID))

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !actor.IsAdmin && !ticket.OwnedBy(actor.UserID) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not allowed to reply on this ticket")
	}

	msg, err := ticket.AddMessage(actor.UserID, actor.IsAdmin, req.Body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save ticket")
		return nil, err
	}

	s.publishMessageAdded(ctx, ticket, msg)
	return ToTicketDTO(ticket), nil
}

// UpdateTicketStatus 管理端设置工单状态，工单允许任意流转
func (s *SupportApplicationService) UpdateTicketStatus(ctx context.Context, actor identity.Actor, ticketID string, next domain.TicketStatus) (*TicketDTO, error) {
	ctx, span := s.tracer.Start(ctx, "SupportService.UpdateTicketStatus")
	defer span.End()

	if !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only admins can change ticket status")
	}
	if next < domain.TicketOpen || next > domain.TicketClosed {
		return nil, apperrors.Newf(apperrors.CodeValidation, "unknown ticket status: %d", next)
	}

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	old := ticket.Status
	ticket.SetStatus(next)
	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Str("ticket_id", ticketID).
		Str("old_status", old.String()).
		Str("new_status", next.String()).
		Msg("ticket status updated")
	return ToTicketDTO(ticket), nil
}

// AssignTicket 管理端把工单指派给某个客服
func (s *SupportApplicationService) AssignTicket(ctx context.Context, actor identity.Actor, ticketID, adminID string) (*TicketDTO, error) {
	ctx, span := s.tracer.Start(ctx, "SupportService.AssignTicket")
	defer span.End()

	if !actor.IsAdmin {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "only admins can assign tickets")
	}
	if adminID == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "assignee id is required")
	}

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	ticket.Assign(adminID)
	if err := s.ticketRepo.Save(ctx, ticket); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return ToTicketDTO(ticket), nil
}

// GetTicket 查询单个工单，仅所有者或管理员可见
func (s *SupportApplicationService) GetTicket(ctx context.Context, actor identity.Actor, ticketID string) (*TicketDTO, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !ticket.OwnedBy(actor.UserID) {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not allowed to view this ticket")
	}
	return ToTicketDTO(ticket), nil
}

// ListTickets 列出当前用户的工单；管理员可按状态过滤查看全部
func (s *SupportApplicationService) ListTickets(ctx context.Context, actor identity.Actor, statusFilter *domain.TicketStatus) ([]*TicketDTO, error) {
	var (
		tickets []*domain.Ticket
		err     error
	)
	if actor.IsAdmin && statusFilter != nil {
		tickets, err = s.ticketRepo.FindByStatus(ctx, *statusFilter)
	} else {
		tickets, err = s.ticketRepo.FindByUserID(ctx, actor.UserID)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]*TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		dtos = append(dtos, ToTicketDTO(t))
	}
	return dtos, nil
}

// publishMessageAdded 发布消息事件，失败只记日志不影响主流程
func (s *SupportApplicationService) publishMessageAdded(ctx context.Context, ticket *domain.Ticket, msg *domain.Message) {
	if s.producer == nil {
		return
	}
	event := &domain.TicketMessageAdded{
		TicketID: ticket.ID,
		UserID:   ticket.UserID,
		SenderID: msg.SenderID,
		IsAdmin:  msg.IsAdmin,
		Body:     msg.Body,
		At:       msg.SentAt,
	}
	if err := s.producer.PublishMessageAdded(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).
			Str("ticket_id", ticket.ID).
			Msg("failed to publish ticket message event")
	}
}

package interfaces

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/httputil"
	"storefront/internal/pkg/identity"
	"storefront/internal/service/support/application"
	"storefront/internal/service/support/domain"
)

// SupportHandler 封装客服工单服务的 HTTP 处理器
type SupportHandler struct {
	service *application.SupportApplicationService
}

// NewSupportHandler 创建一个新的 HTTP 处理器实例
func NewSupportHandler(service *application.SupportApplicationService) *SupportHandler {
	return &SupportHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *SupportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /tickets", h.createTicket)
	mux.HandleFunc("GET /tickets", h.listTickets)
	mux.HandleFunc("GET /tickets/{id}", h.getTicket)
	mux.HandleFunc("POST /tickets/{id}/messages", h.addMessage)
	mux.HandleFunc("POST /tickets/{id}/status", h.updateStatus)
	mux.HandleFunc("POST /tickets/{id}/assign", h.assign)
}

// requestContext 从请求头恢复追踪上下文和调用者身份
func requestContext(r *http.Request) (context.Context, identity.Actor) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return ctx, identity.FromRequest(r)
}

func (h *SupportHandler) createTicket(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req application.CreateTicketRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	ticket, err := h.service.CreateTicket(ctx, actor, &req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ticket)
}

func (h *SupportHandler) listTickets(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var statusFilter *domain.TicketStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httputil.WriteError(w, r, apperrors.New(apperrors.CodeValidation, "status filter must be an integer"))
			return
		}
		status := domain.TicketStatus(n)
		statusFilter = &status
	}

	tickets, err := h.service.ListTickets(ctx, actor, statusFilter)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tickets)
}

func (h *SupportHandler) getTicket(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	ticket, err := h.service.GetTicket(ctx, actor, r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

func (h *SupportHandler) addMessage(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req application.AddMessageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	ticket, err := h.service.AddMessage(ctx, actor, r.PathValue("id"), &req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

func (h *SupportHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req struct {
		Status int `json:"status"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	ticket, err := h.service.UpdateTicketStatus(ctx, actor, r.PathValue("id"), domain.TicketStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

func (h *SupportHandler) assign(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req struct {
		AdminID string `json:"adminId"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	ticket, err := h.service.AssignTicket(ctx, actor, r.PathValue("id"), req.AdminID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ticket)
}

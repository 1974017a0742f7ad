package interfaces

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/pkg/httputil"
	"storefront/internal/pkg/identity"
	"storefront/internal/service/fulfillment/application"
)

// FulfillmentHandler 封装履约服务的 HTTP 处理器
type FulfillmentHandler struct {
	service *application.FulfillmentApplicationService
}

// NewFulfillmentHandler 创建一个新的 HTTP 处理器实例
func NewFulfillmentHandler(service *application.FulfillmentApplicationService) *FulfillmentHandler {
	return &FulfillmentHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *FulfillmentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /packages", h.createPackage)
	mux.HandleFunc("GET /packages/{id}", h.getPackage)
	mux.HandleFunc("GET /packages/{id}/tracking", h.getTracking)
	mux.HandleFunc("POST /packages/{id}/prepare", h.markPreparing)
	mux.HandleFunc("POST /packages/{id}/measurements", h.setMeasurements)
	mux.HandleFunc("POST /packages/{id}/label", h.generateLabel)
	mux.HandleFunc("POST /packages/{id}/delivered", h.markDelivered)
	mux.HandleFunc("POST /packages/{id}/exception", h.markException)
	mux.HandleFunc("POST /packages/{id}/recover", h.recover)
	mux.HandleFunc("DELETE /packages/{id}", h.deletePackage)
}

// requestContext 从请求头恢复追踪上下文和调用者身份
func requestContext(r *http.Request) (context.Context, identity.Actor) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return ctx, identity.FromRequest(r)
}

func (h *FulfillmentHandler) createPackage(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req struct {
		OrderID string `json:"orderId"`
		UserID  string `json:"userId"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	pkg, err := h.service.CreatePackage(ctx, req.OrderID, req.UserID, actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, pkg)
}

func (h *FulfillmentHandler) getPackage(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	pkg, err := h.service.GetPackage(ctx, r.PathValue("id"), actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pkg)
}

func (h *FulfillmentHandler) getTracking(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	events, err := h.service.GetTracking(ctx, r.PathValue("id"), actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *FulfillmentHandler) markPreparing(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	if err := h.service.MarkPreparing(ctx, r.PathValue("id"), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) setMeasurements(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req application.SetMeasurementsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.SetMeasurements(ctx, r.PathValue("id"), &req, actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) generateLabel(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	pkg, err := h.service.GenerateLabel(ctx, r.PathValue("id"), actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pkg)
}

func (h *FulfillmentHandler) markDelivered(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	if err := h.service.MarkDelivered(ctx, r.PathValue("id"), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) markException(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	var req struct {
		Note string `json:"note"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.MarkException(ctx, r.PathValue("id"), req.Note, actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) recover(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	if err := h.service.RecoverFromException(ctx, r.PathValue("id"), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FulfillmentHandler) deletePackage(w http.ResponseWriter, r *http.Request) {
	ctx, actor := requestContext(r)

	if err := h.service.DeletePackage(ctx, r.PathValue("id"), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package interfaces

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/httputil"
	"storefront/internal/pkg/identity"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/domain"
)

// OrderHandler 封装订单服务的 HTTP 处理器
type OrderHandler struct {
	service  *application.OrderApplicationService
	warranty *application.WarrantyApplicationService
	cartRepo domain.CartRepository
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(
	service *application.OrderApplicationService,
	warranty *application.WarrantyApplicationService,
	cartRepo domain.CartRepository,
) *OrderHandler {
	return &OrderHandler{service: service, warranty: warranty, cartRepo: cartRepo}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /cart", h.getCart)
	mux.HandleFunc("PUT /cart/items", h.setCartItem)
	mux.HandleFunc("DELETE /cart/items/{productId}", h.removeCartItem)

	mux.HandleFunc("POST /checkout", h.checkout)
	mux.HandleFunc("POST /payments/confirm", h.confirmPayment)

	mux.HandleFunc("GET /orders", h.listOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("POST /orders/{id}/status", h.updateStatus)
	mux.HandleFunc("POST /orders/{id}/return", h.requestReturn)
	mux.HandleFunc("POST /orders/{id}/return/status", h.updateReturnStatus)

	mux.HandleFunc("POST /warranty/claims", h.fileClaim)
	mux.HandleFunc("POST /warranty/claims/{id}/status", h.updateClaimStatus)
	mux.HandleFunc("GET /orders/{id}/warranty/claims", h.listClaims)
}

func (h *OrderHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	cart, err := h.cartRepo.Get(ctx, actor.UserID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, cart)
}

func (h *OrderHandler) setCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var item domain.CartItem
	if err := httputil.DecodeJSON(r, &item); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if err := h.cartRepo.SetItem(ctx, actor.UserID, item); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	if err := h.cartRepo.RemoveItem(ctx, actor.UserID, r.PathValue("productId")); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) checkout(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req application.CheckoutRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	req.UserID = actor.UserID

	resp, err := h.service.Checkout(ctx, &req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

// confirmPayment 是支付网关的回调入口。
// 响应 200 表示本次确认生效，200 且 confirmed=false 表示重复回调。
func (h *OrderHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	if req.PaymentIntentID == "" {
		httputil.WriteError(w, r, apperrors.New(apperrors.CodeValidation, "paymentIntentId is required"))
		return
	}

	confirmed, err := h.service.ConfirmPayment(ctx, req.PaymentIntentID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"confirmed": confirmed})
}

func (h *OrderHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	orders, err := h.service.ListOrders(ctx, actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	order, err := h.service.GetOrder(ctx, r.PathValue("id"), actor)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req struct {
		Status int `json:"status"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.UpdateOrderStatus(ctx, r.PathValue("id"), domain.OrderStatus(req.Status), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) requestReturn(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req struct {
		Reason string `json:"reason"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.RequestReturn(ctx, r.PathValue("id"), req.Reason, actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) updateReturnStatus(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req struct {
		Status int `json:"status"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	if err := h.service.UpdateReturnStatus(ctx, r.PathValue("id"), domain.ReturnStatus(req.Status), actor); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OrderHandler) fileClaim(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req application.FileClaimRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	claim, err := h.warranty.FileClaim(ctx, actor, &req)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, claim)
}

func (h *OrderHandler) updateClaimStatus(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	var req struct {
		Status int `json:"status"`
	}
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	claim, err := h.warranty.UpdateClaimStatus(ctx, actor, r.PathValue("id"), domain.ClaimStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claim)
}

func (h *OrderHandler) listClaims(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	actor := identity.FromRequest(r)

	claims, err := h.warranty.ListClaims(ctx, actor, r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, claims)
}

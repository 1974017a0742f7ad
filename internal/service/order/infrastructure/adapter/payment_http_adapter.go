package adapter

import (
	"context"
	"fmt"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/order/domain/port"
)

// PaymentHTTPAdapter 通过 HTTP 调用外部支付网关，实现 PaymentGateway 端口
type PaymentHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewPaymentHTTPAdapter(client *httpclient.Client, baseURL string) *PaymentHTTPAdapter {
	return &PaymentHTTPAdapter{client: client, baseURL: baseURL}
}

type createIntentRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Status       string `json:"status"`
}

// CreatePaymentIntent 在网关侧为指定金额创建支付意向
func (a *PaymentHTTPAdapter) CreatePaymentIntent(ctx context.Context, amount int64, metadata map[string]string) (*port.PaymentIntent, error) {
	req := &createIntentRequest{Amount: amount, Currency: "cny", Metadata: metadata}
	var resp intentResponse
	if err := a.client.PostJSON(ctx, a.baseURL+"/v1/payment_intents", req, &resp); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "payment gateway is unavailable", err)
	}
	return &port.PaymentIntent{ID: resp.ID, ClientSecret: resp.ClientSecret, Status: resp.Status}, nil
}

// GetPaymentIntent 查询支付意向的网关侧状态
func (a *PaymentHTTPAdapter) GetPaymentIntent(ctx context.Context, intentID string) (*port.PaymentIntent, error) {
	var resp intentResponse
	url := fmt.Sprintf("%s/v1/payment_intents/%s/query", a.baseURL, intentID)
	if err := a.client.PostJSON(ctx, url, struct{}{}, &resp); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "payment gateway is unavailable", err)
	}
	return &port.PaymentIntent{ID: resp.ID, ClientSecret: resp.ClientSecret, Status: resp.Status}, nil
}

package adapter

import (
	"context"
	"fmt"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/fulfillment/domain/port"
)

// CarrierHTTPAdapter 通过 HTTP 调用承运商网关，实现 CarrierGateway 端口
type CarrierHTTPAdapter struct {
	client   *httpclient.Client
	baseURL  string
	carriers map[string]bool // 本网关签约的承运商
}

func NewCarrierHTTPAdapter(client *httpclient.Client, baseURL string, carriers []string) *CarrierHTTPAdapter {
	supported := make(map[string]bool, len(carriers))
	for _, c := range carriers {
		supported[c] = true
	}
	return &CarrierHTTPAdapter{client: client, baseURL: baseURL, carriers: supported}
}

type labelResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	LabelURL       string `json:"labelUrl"`
}

// GenerateLabel 请求承运商生成面单和运单号
func (a *CarrierHTTPAdapter) GenerateLabel(ctx context.Context, req port.LabelRequest) (*port.Label, error) {
	var resp labelResponse
	if err := a.client.PostJSON(ctx, a.baseURL+"/v1/labels", req, &resp); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "carrier gateway is unavailable", err)
	}
	if resp.TrackingNumber == "" || resp.LabelURL == "" {
		return nil, apperrors.New(apperrors.CodeExternalService, "carrier returned an incomplete label")
	}
	return &port.Label{TrackingNumber: resp.TrackingNumber, LabelURL: resp.LabelURL}, nil
}

// GetTracking 查询运单轨迹
func (a *CarrierHTTPAdapter) GetTracking(ctx context.Context, trackingNumber string) ([]port.TrackingEvent, error) {
	var events []port.TrackingEvent
	url := fmt.Sprintf("%s/v1/tracking/%s/query", a.baseURL, trackingNumber)
	if err := a.client.PostJSON(ctx, url, struct{}{}, &events); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeExternalService, "carrier gateway is unavailable", err)
	}
	return events, nil
}

// CancelShipment 作废运单，面单落库失败后的补偿动作
func (a *CarrierHTTPAdapter) CancelShipment(ctx context.Context, trackingNumber string) error {
	url := fmt.Sprintf("%s/v1/shipments/%s/cancel", a.baseURL, trackingNumber)
	if err := a.client.PostJSON(ctx, url, struct{}{}, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeExternalService, "failed to cancel shipment", err)
	}
	return nil
}

// SupportsCarrier 判断承运商是否在签约列表内
func (a *CarrierHTTPAdapter) SupportsCarrier(carrier string) bool {
	return a.carriers[carrier]
}

package notification

import (
	"context"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/httpclient"
)

// Mail 是一封待发送的邮件
type Mail struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MailGateway 是邮件投递的出站端口
type MailGateway interface {
	Send(ctx context.Context, mail Mail) error
}

// MailHTTPAdapter 通过邮件服务商的 HTTP API 投递邮件
type MailHTTPAdapter struct {
	client  *httpclient.Client
	baseURL string
}

func NewMailHTTPAdapter(client *httpclient.Client, baseURL string) *MailHTTPAdapter {
	return &MailHTTPAdapter{client: client, baseURL: baseURL}
}

// Send 投递一封邮件
func (a *MailHTTPAdapter) Send(ctx context.Context, mail Mail) error {
	if err := a.client.PostJSON(ctx, a.baseURL+"/v1/messages", mail, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeExternalService, "mail provider is unavailable", err)
	}
	return nil
}

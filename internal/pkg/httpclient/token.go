package httpclient

import "context"

// StaticTokenProvider 返回固定凭证，适用于长期有效的网关 API Key。
// Refresh 返回同一个值：固定凭证收到 401 说明配置错了，重试也无济于事。
type StaticTokenProvider struct {
	token string
}

func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return p.token, nil
}

func (p *StaticTokenProvider) Refresh(ctx context.Context) (string, error) {
	return p.token, nil
}

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// TokenProvider 为出站请求提供凭证。
// 显式注入而不是挂在全局单例上，调用方决定凭证从哪里来、如何刷新。
type TokenProvider interface {
	// Token 返回当前可用的凭证
	Token(ctx context.Context) (string, error)
	// Refresh 在收到 401 后强制刷新并返回新凭证
	Refresh(ctx context.Context) (string, error)
}

// Client 是一个可追踪的、可注入凭证的 HTTP 客户端
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	tokens     TokenProvider // 可为 nil，表示目标服务不需要认证
}

// NewClient 创建一个新的客户端实例。
// 不设置全局 Timeout，超时完全受控于每次请求传入的 context。
func NewClient(tracer trace.Tracer, tokens TokenProvider) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		tokens:     tokens,
	}
}

// PostJSON 向下游服务发送 JSON 请求并把响应解码到 out（out 可为 nil）。
// 收到 401 时刷新一次凭证并重试，仍失败则向上抛出。
func (c *Client) PostJSON(ctx context.Context, serviceURL string, body interface{}, out interface{}) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return err
	}
	spanName := fmt.Sprintf("call-%s", strings.Split(parsedURL.Host, ":")[0])

	ctx, span := c.Tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("http.url", serviceURL),
		attribute.String("http.method", http.MethodPost),
	)

	payload, err := json.Marshal(body)
	if err != nil {
		span.RecordError(err)
		return err
	}

	resp, err := c.do(ctx, serviceURL, payload, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		span.AddEvent("Got 401, refreshing token and retrying once.")
		resp, err = c.do(ctx, serviceURL, payload, true)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("service %s returned status %s", serviceURL, resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, serviceURL string, payload []byte, forceRefresh bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serviceURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		var token string
		if forceRefresh {
			token, err = c.tokens.Refresh(ctx)
		} else {
			token, err = c.tokens.Token(ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to obtain token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return c.HTTPClient.Do(req)
}

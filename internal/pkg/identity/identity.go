package identity

import "net/http"

// Actor 是认证层解析出的调用者身份。
// 核心完全信任这份输入，不做二次校验；签发与验证在网关层完成。
type Actor struct {
	UserID  string
	IsAdmin bool
}

// FromRequest 从认证层注入的请求头还原调用者身份
func FromRequest(r *http.Request) Actor {
	return Actor{
		UserID:  r.Header.Get("X-User-Id"),
		IsAdmin: r.Header.Get("X-Is-Admin") == "true",
	}
}

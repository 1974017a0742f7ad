package httputil

import (
	"encoding/json"
	"net/http"

	"storefront/internal/pkg/apperrors"
	"storefront/internal/pkg/logger"
)

// WriteJSON 输出 JSON 响应
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// WriteError 把应用错误码翻译为 HTTP 状态码后输出
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)

	var status int
	switch code {
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeUnauthorized, apperrors.CodeForbidden:
		status = http.StatusForbidden
	case apperrors.CodeValidation:
		status = http.StatusBadRequest
	case apperrors.CodeConflict:
		status = http.StatusConflict
	case apperrors.CodeInvalidTransition:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeExternalService:
		status = http.StatusBadGateway
	default:
		status = http.StatusInternalServerError
	}

	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	WriteJSON(w, status, errorBody{Code: int(code), Message: err.Error()})
}

// DecodeJSON 解析请求体，失败时返回 Validation 错误
func DecodeJSON(r *http.Request, out interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.CodeValidation, "malformed request body", err)
	}
	return nil
}

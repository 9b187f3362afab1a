// Package client 编排器使用的 HTTP 客户端公共部分
package client

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"revizly/internal/orchestrator"
	httputil "revizly/internal/pkg/http"
)

const defaultTimeout = 60 * time.Second

// NewResty 创建不重试的 resty 客户端
func NewResty(baseURL, userAgent string, timeout time.Duration) *resty.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", userAgent).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetError(&httputil.ErrorResponse{})
}

// CheckResponse 将传输错误与非 2xx 响应映射为编排器错误
// 401/403/404 分别映射为 Unauthorized/Forbidden/NotFound，其余归为 kind
func CheckResponse(op string, resp *resty.Response, err error, kind error) error {
	if err != nil {
		return errors.Wrapf(kind, "%s: %v", op, err)
	}
	if !resp.IsError() {
		return nil
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return errors.Wrapf(orchestrator.ErrUnauthorized, "%s: %s", op, detailOf(resp))
	case http.StatusForbidden:
		return errors.Wrapf(orchestrator.ErrForbidden, "%s: %s", op, detailOf(resp))
	case http.StatusNotFound:
		return errors.Wrapf(orchestrator.ErrNotFound, "%s: %s", op, detailOf(resp))
	default:
		return errors.Wrapf(kind, "%s: status %d: %s", op, resp.StatusCode(), detailOf(resp))
	}
}

// CheckUpstream 用于无凭证关系的上游，传输错误与任何非 2xx 响应都归为 kind
func CheckUpstream(op string, resp *resty.Response, err error, kind error) error {
	if err != nil {
		return errors.Wrapf(kind, "%s: %v", op, err)
	}
	if resp.IsError() {
		return errors.Wrapf(kind, "%s: status %d: %s", op, resp.StatusCode(), detailOf(resp))
	}
	return nil
}

func detailOf(resp *resty.Response) string {
	if e, ok := resp.Error().(*httputil.ErrorResponse); ok && e != nil && e.Message != "" {
		return e.Message
	}
	return resp.Status()
}

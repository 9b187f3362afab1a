package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"revizly/internal/client"
	"revizly/internal/model"
	"revizly/internal/orchestrator"
)

// Client 推理服务客户端，不携带凭证
type Client struct {
	http *resty.Client
}

// New 创建推理客户端
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{http: client.NewResty(baseURL, "revizly-cli/1.0", timeout)}
}

// Generate 提交文本与附件，返回回复列表
func (c *Client) Generate(ctx context.Context, text string, att *orchestrator.Attachment) ([]model.BotReply, error) {
	req := c.http.R().SetContext(ctx).SetHeader("Accept", "application/json")

	if att != nil {
		contentType := att.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		req.SetMultipartField("file", att.Name, contentType, bytes.NewReader(att.Data))
		if text != "" {
			req.SetMultipartFormData(map[string]string{"text": text})
		}
	} else {
		req.SetBody(model.GenerateRequest{Text: text})
	}

	resp, err := req.Post("/generate")
	if err := client.CheckUpstream("generate", resp, err, orchestrator.ErrInferenceFailure); err != nil {
		return nil, err
	}

	// 空数组表示没有回复；非 JSON 数组的响应体视为推理失败
	var out []model.BotReply
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, errors.Wrapf(orchestrator.ErrInferenceFailure, "generate: malformed reply: %v", err)
	}
	return out, nil
}

var _ orchestrator.Inference = (*Client)(nil)

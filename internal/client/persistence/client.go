package persistence

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"revizly/internal/client"
	"revizly/internal/model"
	"revizly/internal/orchestrator"
)

// Client 持久化与认证服务客户端
type Client struct {
	http *resty.Client
}

// New 创建客户端，token 可为空（登录/注册不需要）
func New(baseURL, token string, timeout time.Duration) *Client {
	c := &Client{http: client.NewResty(baseURL, "revizly-cli/1.0", timeout)}
	if token != "" {
		c.http.SetAuthToken(token)
	}
	return c
}

// SetToken 更新 Bearer Token
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

// Signup 注册
func (c *Client) Signup(ctx context.Context, email, password string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(model.CredentialsRequest{Email: email, Password: password}).
		Post("/signup")
	return client.CheckResponse("signup", resp, err, orchestrator.ErrPersistenceFailure)
}

// Login 登录，返回 Bearer Token
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out model.TokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(model.CredentialsRequest{Email: email, Password: password}).
		SetResult(&out).
		Post("/login")
	if err := client.CheckResponse("login", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Me 当前用户
func (c *Client) Me(ctx context.Context) (*model.MeResponse, error) {
	var out model.MeResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/me")
	if err := client.CheckResponse("me", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateConversation 创建对话
func (c *Client) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	var out model.Conversation
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(model.CreateConversationRequest{Title: title}).
		SetResult(&out).
		Post("/conversations")
	if err := client.CheckResponse("create conversation", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListConversations 列出当前用户的对话
func (c *Client) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	var out model.ConversationListResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/conversations")
	if err := client.CheckResponse("list conversations", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return out.Conversations, nil
}

// RenameConversation 重命名对话
func (c *Client) RenameConversation(ctx context.Context, id, title string) (*model.Conversation, error) {
	var out model.Conversation
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(model.RenameConversationRequest{Title: title}).
		SetResult(&out).
		Put("/conversations/" + url.PathEscape(id))
	if err := client.CheckResponse("rename conversation", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMessages 删除对话中的全部消息
func (c *Client) DeleteMessages(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/conversations/" + url.PathEscape(id) + "/messages")
	return client.CheckResponse("delete messages", resp, err, orchestrator.ErrDeleteMessagesFailed)
}

// DeleteConversation 删除对话
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/conversations/" + url.PathEscape(id))
	return client.CheckResponse("delete conversation", resp, err, orchestrator.ErrDeleteConversationFailed)
}

// ListMessages 列出对话中的消息
func (c *Client) ListMessages(ctx context.Context, id string) ([]*model.Message, error) {
	var out model.MessageListResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/conversations/" + url.PathEscape(id) + "/messages")
	if err := client.CheckResponse("list messages", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// CreateMessage 写入消息；带附件时使用 multipart，否则使用 JSON
func (c *Client) CreateMessage(ctx context.Context, w *orchestrator.MessageWrite) (*model.Message, error) {
	var out model.Message
	req := c.http.R().SetContext(ctx).SetResult(&out)

	if w.Attachment != nil {
		fields := map[string]string{
			"conversationId": w.ConversationID,
			"sender":         string(w.Sender),
			"message":        w.Text,
		}
		if w.BotReply != nil {
			raw, err := json.Marshal(w.BotReply)
			if err != nil {
				return nil, errors.Wrap(orchestrator.ErrPersistenceFailure, err.Error())
			}
			fields["botResponse"] = string(raw)
		}
		contentType := w.Attachment.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		req.SetMultipartFormData(fields).
			SetMultipartField("file", w.Attachment.Name, contentType, bytes.NewReader(w.Attachment.Data))
	} else {
		req.SetBody(model.CreateMessageRequest{
			ConversationID: w.ConversationID,
			Sender:         w.Sender,
			Message:        w.Text,
			BotResponse:    w.BotReply,
		})
	}

	resp, err := req.Post("/messages")
	if err := client.CheckResponse("create message", resp, err, orchestrator.ErrPersistenceFailure); err != nil {
		return nil, err
	}
	return &out, nil
}

var _ orchestrator.Persistence = (*Client)(nil)

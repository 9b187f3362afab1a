package model

// CreateConversationRequest 创建对话请求
// conversationTitle 为旧客户端字段名，与 title 等价
type CreateConversationRequest struct {
	Title             string `json:"title,omitempty"`
	ConversationTitle string `json:"conversationTitle,omitempty"`
}

// ResolvedTitle 返回最终标题
func (r *CreateConversationRequest) ResolvedTitle() string {
	if r.Title != "" {
		return r.Title
	}
	if r.ConversationTitle != "" {
		return r.ConversationTitle
	}
	return DefaultConversationTitle
}

// RenameConversationRequest 重命名对话请求
type RenameConversationRequest struct {
	Title             string `json:"title,omitempty"`
	ConversationTitle string `json:"conversationTitle,omitempty"`
}

// ResolvedTitle 返回新标题，可能为空
func (r *RenameConversationRequest) ResolvedTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ConversationTitle
}

// CreateMessageRequest 创建消息请求（JSON 形式；multipart 形式由 handler 解析为同一结构）
type CreateMessageRequest struct {
	ConversationID string    `json:"conversationId"`
	Sender         Sender    `json:"sender"`
	Message        string    `json:"message,omitempty"`
	BotResponse    *BotReply `json:"botResponse,omitempty"`
}

// CredentialsRequest 注册/登录请求
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GenerateRequest 推理请求（JSON 形式）
type GenerateRequest struct {
	Text string `json:"text,omitempty"`
}

package model

// ConversationListResponse GET /conversations 响应
type ConversationListResponse struct {
	Conversations []*Conversation `json:"conversations"`
}

// MessageListResponse GET /conversations/:id/messages 响应
type MessageListResponse struct {
	Messages []*Message `json:"messages"`
}

// TokenResponse POST /login 响应
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse GET /me 响应
type MeResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// MessageResponse 只包含提示信息的响应
type MessageResponse struct {
	Message string `json:"message"`
}

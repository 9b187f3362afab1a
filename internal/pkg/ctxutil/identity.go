package ctxutil

import "context"

// identityKeyType 使用私有类型避免与其他 context key 冲突
type identityKeyType struct{}

var identityKey = identityKeyType{}

// Identity 由 Bearer Token 解析出的调用者身份
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity 将调用者身份注入到 context 中，由认证中间件在验证 token 后调用
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityKey, ident)
}

// GetIdentity 从 context 中解析调用者身份
func GetIdentity(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	ident, ok := ctx.Value(identityKey).(Identity)
	if !ok || ident.UserID == "" {
		return Identity{}, false
	}
	return ident, true
}

// GetUserID 从 context 中解析 userID
func GetUserID(ctx context.Context) (string, bool) {
	ident, ok := GetIdentity(ctx)
	return ident.UserID, ok
}

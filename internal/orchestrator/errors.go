package orchestrator

import "errors"

var (
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("forbidden")
	ErrNotFound                 = errors.New("not found")
	ErrInferenceFailure         = errors.New("inference failed")
	ErrPersistenceFailure       = errors.New("persistence failed")
	ErrDeleteMessagesFailed     = errors.New("failed to delete messages")
	ErrDeleteConversationFailed = errors.New("failed to delete conversation")
	ErrEmptyMessage             = errors.New("message text or attachment is required")
)

// IsAuthError 凭证失败，调用方应重新登录
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

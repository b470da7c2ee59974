package azuredi

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential 未配置 Azure 凭据
	ErrMissingCredential = errors.New("缺少 Azure Document Intelligence 凭据 (KEY)")
	// ErrMissingEndpoint 未配置 Azure 服务地址
	ErrMissingEndpoint = errors.New("缺少 Azure Document Intelligence 服务地址 (TOKEN)")
)

// APIError 表示非预期的 HTTP 状态码
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s 失败，状态码 %d: %s", e.Op, e.StatusCode, e.Body)
}

// OperationError 表示分析操作以 failed 状态结束
type OperationError struct {
	Code    string
	Message string
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("文档分析失败 (%s): %s", e.Code, e.Message)
}

package ocr

import (
	"context"
	"errors"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/documentcloud"
)

// 展示给 DocumentCloud 用户的提示信息
const (
	MsgNoDocuments     = "Please select at least one document."
	MsgNoOrganization  = "No organization to charge."
	MsgChargeFailed    = "Error charging AI credits."
	MsgDocumentPrivate = "Document must be public"
)

// ErrEmptyResult 识别服务没有返回结果
var ErrEmptyResult = errors.New("识别结果为空")

// Recognizer 提交文档 URL 并阻塞等待识别结果
type Recognizer interface {
	AnalyzeFromURL(ctx context.Context, model, documentURL string) (*azuredi.AnalyzeResult, error)
}

// Host 是 Add-On 使用的 DocumentCloud 接口
type Host interface {
	ListDocuments(ctx context.Context, sel documentcloud.Selection) ([]documentcloud.Document, error)
	ChargeCredits(ctx context.Context, orgID string, credits int, runID string) error
	PatchPages(ctx context.Context, docID int64, pages []documentcloud.Page) error
	SetMessage(ctx context.Context, runID, message string) error
	SetProgress(ctx context.Context, runID string, progress int) error
}

// Progress 本地进度显示，Complete 在运行结束时调用，包括提前结束
type Progress interface {
	Step(description string)
	Complete()
}

// RunOptions 表示一次 Add-On 运行的参数
type RunOptions struct {
	Selection      documentcloud.Selection
	OrganizationID string
	RunID          string
	Model          string
}

// Eligibility 资格检查的结果
type Eligibility struct {
	// Documents 通过检查并已扣除积分的文档，按列表顺序
	Documents []documentcloud.Document
	// Message 不满足条件时展示给用户的提示
	Message string
}

// OK 是否可以继续执行识别
func (e *Eligibility) OK() bool {
	return e.Message == ""
}

// RunResult 表示一次运行的结果
type RunResult struct {
	Documents int
	Pages     int
	// Message 运行提前结束时展示给用户的提示，正常完成时为空
	Message string
}

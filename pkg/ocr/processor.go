package ocr

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/documentcloud"
)

// Processor 将选中的 DocumentCloud 文档送去识别并写回页面
type Processor struct {
	recognizer  Recognizer
	host        Host
	logger      *zap.Logger
	newProgress func(total int) Progress
}

// NewProcessor 创建一个新的处理器
func NewProcessor(recognizer Recognizer, host Host, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		recognizer: recognizer,
		host:       host,
		logger:     logger,
	}
}

// SetProgress 设置本地进度显示的构造函数，为 nil 时不显示
func (p *Processor) SetProgress(newProgress func(total int) Progress) {
	p.newProgress = newProgress
}

// Validate 检查本次运行是否可以执行，并按总页数预扣积分
// 不满足条件时已向用户发送提示，调用方应直接结束运行
func (p *Processor) Validate(ctx context.Context, opts RunOptions) (*Eligibility, error) {
	eligibility, err := p.validate(ctx, opts)
	if err != nil {
		return nil, err
	}
	if !eligibility.OK() {
		return eligibility, p.notify(ctx, opts.RunID, eligibility.Message)
	}
	return eligibility, nil
}

func (p *Processor) validate(ctx context.Context, opts RunOptions) (*Eligibility, error) {
	if opts.Selection.Empty() {
		return &Eligibility{Message: MsgNoDocuments}, nil
	}
	if opts.OrganizationID == "" {
		return &Eligibility{Message: MsgNoOrganization}, nil
	}

	docs, err := p.host.ListDocuments(ctx, opts.Selection)
	if err != nil {
		return nil, fmt.Errorf("获取文档列表失败: %w", err)
	}
	if len(docs) == 0 {
		return &Eligibility{Message: MsgNoDocuments}, nil
	}

	totalPages := 0
	for _, doc := range docs {
		totalPages += doc.PageCount
	}
	p.logger.Info("预扣AI积分",
		zap.String("organization", opts.OrganizationID),
		zap.Int("documents", len(docs)),
		zap.Int("credits", totalPages))

	if err := p.host.ChargeCredits(ctx, opts.OrganizationID, totalPages, opts.RunID); err != nil {
		var apiErr *documentcloud.APIError
		if errors.As(err, &apiErr) {
			p.logger.Warn("扣除AI积分失败", zap.Error(err))
			return &Eligibility{Message: MsgChargeFailed}, nil
		}
		return nil, fmt.Errorf("扣除AI积分失败: %w", err)
	}

	return &Eligibility{Documents: docs}, nil
}

// Run 执行一次完整的 Add-On 运行
func (p *Processor) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Model == "" {
		opts.Model = azuredi.ModelRead
	}

	eligibility, err := p.Validate(ctx, opts)
	if err != nil {
		return nil, err
	}
	result := &RunResult{}
	if !eligibility.OK() {
		result.Message = eligibility.Message
		return result, nil
	}
	docs := eligibility.Documents

	var progress Progress
	if p.newProgress != nil {
		progress = p.newProgress(len(docs))
		defer progress.Complete()
	}

	for i, doc := range docs {
		if !doc.IsPublic() {
			p.logger.Warn("文档不是公开的", zap.Int64("document", doc.ID), zap.String("access", doc.Access))
			result.Message = MsgDocumentPrivate
			return result, p.notify(ctx, opts.RunID, MsgDocumentPrivate)
		}

		pages, err := p.ProcessDocument(ctx, opts.Model, doc)
		if err != nil {
			return result, err
		}

		result.Documents++
		result.Pages += len(pages)

		if err := p.host.SetProgress(ctx, opts.RunID, 100*(i+1)/len(docs)); err != nil {
			return result, fmt.Errorf("更新进度失败: %w", err)
		}
		if progress != nil {
			progress.Step(fmt.Sprintf("文档 %d", doc.ID))
		}
	}

	p.logger.Info("所有文档处理完成",
		zap.Int("documents", result.Documents),
		zap.Int("pages", result.Pages))
	return result, nil
}

// ProcessDocument 识别单个文档并立即写回页面
func (p *Processor) ProcessDocument(ctx context.Context, model string, doc documentcloud.Document) ([]documentcloud.Page, error) {
	pdfURL := doc.PDFURL()
	p.logger.Info("开始识别文档", zap.Int64("document", doc.ID), zap.String("url", pdfURL))

	analyzed, err := p.recognizer.AnalyzeFromURL(ctx, model, pdfURL)
	if err != nil {
		p.logger.Error("识别文档失败", zap.Int64("document", doc.ID), zap.Error(err))
		return nil, fmt.Errorf("识别文档 %d 失败: %w", doc.ID, err)
	}
	if analyzed == nil {
		return nil, fmt.Errorf("识别文档 %d 失败: %w", doc.ID, ErrEmptyResult)
	}

	pages, err := ConvertResult(analyzed)
	if err != nil {
		return nil, fmt.Errorf("转换文档 %d 失败: %w", doc.ID, err)
	}

	if err := p.host.PatchPages(ctx, doc.ID, pages); err != nil {
		p.logger.Error("写回页面失败", zap.Int64("document", doc.ID), zap.Error(err))
		return nil, fmt.Errorf("写回文档 %d 失败: %w", doc.ID, err)
	}

	p.logger.Info("文档处理完成", zap.Int64("document", doc.ID), zap.Int("pages", len(pages)))
	return pages, nil
}

// notify 记录并向用户发送提示信息
func (p *Processor) notify(ctx context.Context, runID, message string) error {
	p.logger.Warn("运行提前结束", zap.String("message", message))
	if err := p.host.SetMessage(ctx, runID, message); err != nil {
		return fmt.Errorf("发送提示信息失败: %w", err)
	}
	return nil
}

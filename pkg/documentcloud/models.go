package documentcloud

import (
	"fmt"
	"strings"
)

// OCREngine 写回页面时标记的 OCR 引擎
const OCREngine = "azuredi"

// AccessPublic 公开文档的访问级别
const AccessPublic = "public"

// Document 表示 DocumentCloud 上的一个文档
type Document struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Access    string `json:"access"`
	PageCount int    `json:"page_count"`
	AssetURL  string `json:"asset_url"`
}

// IsPublic 文档是否公开可访问
func (d Document) IsPublic() bool {
	return d.Access == AccessPublic
}

// PDFURL 返回文档 PDF 的公开地址
func (d Document) PDFURL() string {
	assetURL := d.AssetURL
	if assetURL != "" && !strings.HasSuffix(assetURL, "/") {
		assetURL += "/"
	}
	return fmt.Sprintf("%sdocuments/%d/%s.pdf", assetURL, d.ID, d.Slug)
}

// Selection 表示 Add-On 运行时选中的文档
type Selection struct {
	IDs   []int64
	Query string
}

// Empty 是否没有选中任何文档
func (s Selection) Empty() bool {
	return len(s.IDs) == 0 && strings.TrimSpace(s.Query) == ""
}

// Page 写回 DocumentCloud 的单页内容
type Page struct {
	PageNumber int        `json:"page_number"`
	Text       string     `json:"text"`
	OCR        string     `json:"ocr"`
	Positions  []Position `json:"positions"`
}

// Position 单词在页面中的归一化位置，取值范围 [0, 1]
type Position struct {
	Text string  `json:"text"`
	X1   float64 `json:"x1"`
	X2   float64 `json:"x2"`
	Y1   float64 `json:"y1"`
	Y2   float64 `json:"y2"`
}

// listResponse 分页列表响应
type listResponse struct {
	Count   int        `json:"count"`
	Next    *string    `json:"next"`
	Results []Document `json:"results"`
}

type chargeRequest struct {
	AICredits  int    `json:"ai_credits"`
	AddOnRunID string `json:"addonrun_id,omitempty"`
}

type pagesRequest struct {
	Pages []Page `json:"pages"`
}

type runUpdate struct {
	Message  *string `json:"message,omitempty"`
	Progress *int    `json:"progress,omitempty"`
}

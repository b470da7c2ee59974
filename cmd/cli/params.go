package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/documentcloud"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/ocr"
)

// addonParams DocumentCloud 传给 Add-On 的运行参数
type addonParams struct {
	ID           string  `json:"id"`
	Documents    []int64 `json:"documents"`
	Query        string  `json:"query"`
	Organization any     `json:"organization"`
}

// parseParams 解析 --params，以 @ 开头时从文件读取
func parseParams(raw string) (*addonParams, error) {
	data := []byte(raw)
	if path, ok := strings.CutPrefix(raw, "@"); ok {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取参数文件失败: %w", err)
		}
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var params addonParams
	if err := decoder.Decode(&params); err != nil {
		return nil, fmt.Errorf("解析运行参数失败: %w", err)
	}
	return &params, nil
}

// organizationID 组织ID 可能是数字也可能是字符串
func (p *addonParams) organizationID() string {
	switch v := p.Organization.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// buildRunOptions 合并参数与命令行标志，命令行标志优先
// Add-On 固定使用读取模型，azure_model 只影响 analyze 命令
func buildRunOptions(params *addonParams, ids []int64, query, organization, runID string) (ocr.RunOptions, error) {
	opts := ocr.RunOptions{Model: azuredi.ModelRead}
	if params != nil {
		opts.Selection = documentcloud.Selection{IDs: params.Documents, Query: params.Query}
		opts.OrganizationID = params.organizationID()
		opts.RunID = params.ID
	}
	if len(ids) > 0 {
		opts.Selection.IDs = ids
	}
	if query != "" {
		opts.Selection.Query = query
	}
	if organization != "" {
		opts.OrganizationID = organization
	}
	if runID != "" {
		opts.RunID = runID
	}

	if opts.RunID != "" {
		if _, err := uuid.Parse(opts.RunID); err != nil {
			return ocr.RunOptions{}, fmt.Errorf("无效的运行ID %q: %w", opts.RunID, err)
		}
	}
	return opts, nil
}

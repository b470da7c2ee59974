package azuredi

import (
	"encoding/json"
	"fmt"
)

// ParseResult 解析保存下来的 JSON，既接受完整的轮询响应，也接受单独的 analyzeResult
func ParseResult(data []byte) (*AnalyzeResult, error) {
	var op AnalyzeOperation
	if err := json.Unmarshal(data, &op); err != nil {
		return nil, fmt.Errorf("解析JSON数据失败: %w", err)
	}
	if op.AnalyzeResult != nil {
		if op.Status != "" && op.Status != StatusSucceeded {
			return nil, fmt.Errorf("分析未成功完成，状态: %s", op.Status)
		}
		op.AnalyzeResult.RawResponse = data
		return op.AnalyzeResult, nil
	}

	var result AnalyzeResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("解析JSON数据失败: %w", err)
	}
	if len(result.Pages) == 0 {
		return nil, fmt.Errorf("JSON中没有页面数据")
	}
	result.RawResponse = data
	return &result, nil
}

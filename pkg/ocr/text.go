package ocr

import (
	"regexp"
	"strings"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
)

// noiseLine 只由冒号、句点、连字符组成（含空行）的行
var noiseLine = regexp.MustCompile(`^[:.\-]*$`)

// CleanLine 将噪声行替换为空字符串，其余行原样返回
func CleanLine(line string) string {
	if noiseLine.MatchString(strings.TrimSpace(line)) {
		return ""
	}
	return line
}

// JoinLines 清理每一行后用换行符拼接，行数保持不变
func JoinLines(lines []azuredi.Line) string {
	cleaned := make([]string, len(lines))
	for i, line := range lines {
		cleaned[i] = CleanLine(line.Content)
	}
	return strings.Join(cleaned, "\n")
}

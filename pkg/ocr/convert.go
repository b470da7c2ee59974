package ocr

import (
	"fmt"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
	"github.com/nerdneilsfield/dc-azure-ocr/pkg/documentcloud"
)

// ConvertPage 将识别结果中的一页转换为 DocumentCloud 页面
func ConvertPage(index int, page azuredi.Page) (documentcloud.Page, error) {
	positions := make([]documentcloud.Position, 0, len(page.Words))
	for _, word := range page.Words {
		box, err := Normalize(word.Polygon.Points(), page.Width, page.Height)
		if err != nil {
			return documentcloud.Page{}, fmt.Errorf("第 %d 页单词 %q: %w", index, word.Content, err)
		}
		positions = append(positions, documentcloud.Position{
			Text: word.Content,
			X1:   box.X1,
			X2:   box.X2,
			Y1:   box.Y1,
			Y2:   box.Y2,
		})
	}

	return documentcloud.Page{
		PageNumber: index,
		Text:       JoinLines(page.Lines),
		OCR:        documentcloud.OCREngine,
		Positions:  positions,
	}, nil
}

// ConvertResult 按页面顺序转换整个识别结果，页码从 0 开始
func ConvertResult(result *azuredi.AnalyzeResult) ([]documentcloud.Page, error) {
	pages := make([]documentcloud.Page, 0, len(result.Pages))
	for i, page := range result.Pages {
		dcPage, err := ConvertPage(i, page)
		if err != nil {
			return nil, err
		}
		pages = append(pages, dcPage)
	}
	return pages, nil
}

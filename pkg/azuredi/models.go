package azuredi

import (
	"encoding/json"
	"time"
)

// ModelRead 通用文字识别模型
const ModelRead = "prebuilt-read"

// 分析操作的状态
const (
	StatusNotStarted = "notStarted"
	StatusRunning    = "running"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// analyzeRequest 提交分析的请求体
type analyzeRequest struct {
	URLSource string `json:"urlSource"`
}

// AnalyzeOperation 表示轮询 Operation-Location 得到的响应
type AnalyzeOperation struct {
	Status              string         `json:"status"`
	CreatedDateTime     time.Time      `json:"createdDateTime"`
	LastUpdatedDateTime time.Time      `json:"lastUpdatedDateTime"`
	Error               *ErrorDetail   `json:"error,omitempty"`
	AnalyzeResult       *AnalyzeResult `json:"analyzeResult,omitempty"`
}

// ErrorDetail 服务端返回的错误信息
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalyzeResult 表示一个文档的识别结果
type AnalyzeResult struct {
	APIVersion string `json:"apiVersion"`
	ModelID    string `json:"modelId"`
	Content    string `json:"content"`
	Pages      []Page `json:"pages"`

	// 原始响应数据，用于保存
	RawResponse json.RawMessage `json:"-"`
}

// Page 表示识别结果中的单个页面
// Width、Height 与多边形坐标使用同一单位（图片为 pixel，PDF 为 inch）
type Page struct {
	PageNumber int     `json:"pageNumber"`
	Angle      float64 `json:"angle"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Unit       string  `json:"unit"`
	Words      []Word  `json:"words"`
	Lines      []Line  `json:"lines"`
}

// Word 表示一个识别出的单词
type Word struct {
	Content    string  `json:"content"`
	Polygon    Polygon `json:"polygon"`
	Confidence float64 `json:"confidence"`
}

// Line 表示一行文本
type Line struct {
	Content string  `json:"content"`
	Polygon Polygon `json:"polygon"`
}

// Point 页面坐标中的一个点
type Point struct {
	X float64
	Y float64
}

// Polygon 按 x0, y0, x1, y1, ... 顺序平铺的顶点坐标
type Polygon []float64

// Points 将平铺的坐标转换为点序列，末尾多余的坐标被忽略
func (p Polygon) Points() []Point {
	points := make([]Point, 0, len(p)/2)
	for i := 0; i+1 < len(p); i += 2 {
		points = append(points, Point{X: p[i], Y: p[i+1]})
	}
	return points
}

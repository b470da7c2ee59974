package ocr

import (
	"errors"
	"fmt"

	"github.com/nerdneilsfield/dc-azure-ocr/pkg/azuredi"
)

var (
	// ErrInvalidDimensions 页面宽度或高度不是正数
	ErrInvalidDimensions = errors.New("页面尺寸必须为正数")
	// ErrInvalidPolygon 单词多边形不是四个顶点
	ErrInvalidPolygon = errors.New("单词多边形必须包含四个顶点")
)

// Box 归一化后的外接矩形，各分量位于 [0, 1]
type Box struct {
	X1, X2, Y1, Y2 float64
}

// Normalize 计算四边形的轴对齐外接矩形，并按页面尺寸归一化到 [0, 1]
func Normalize(points []azuredi.Point, width, height float64) (Box, error) {
	if width <= 0 || height <= 0 {
		return Box{}, fmt.Errorf("%w: %vx%v", ErrInvalidDimensions, width, height)
	}
	if len(points) != 4 {
		return Box{}, fmt.Errorf("%w: 实际为 %d 个", ErrInvalidPolygon, len(points))
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, pt := range points[1:] {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}

	return Box{
		X1: clamp(minX / width),
		X2: clamp(maxX / width),
		Y1: clamp(minY / height),
		Y2: clamp(maxY / height),
	}, nil
}

// clamp 将值限制在 [0, 1]
func clamp(v float64) float64 {
	return max(0, min(1, v))
}

package azuredi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAPIVersion 默认使用的 REST API 版本
const DefaultAPIVersion = "2023-07-31"

// Client 表示 Azure Document Intelligence REST API 客户端
type Client struct {
	endpoint     string
	key          string
	apiVersion   string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient 创建一个新的 Document Intelligence 客户端
// key 或 endpoint 为空时返回错误
func NewClient(endpoint, key string) (*Client, error) {
	if key == "" {
		return nil, ErrMissingCredential
	}
	if endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(endpoint); err != nil {
		return nil, fmt.Errorf("无效的服务地址: %w", err)
	}

	// 确保地址以"/"结尾
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return &Client{
		endpoint:     endpoint,
		key:          key,
		apiVersion:   DefaultAPIVersion,
		pollInterval: time.Second,
		httpClient:   &http.Client{},
		logger:       zap.NewNop(),
	}, nil
}

// SetAPIVersion 设置 REST API 版本
func (c *Client) SetAPIVersion(version string) {
	if version != "" {
		c.apiVersion = version
	}
}

// SetPollInterval 设置服务端未给出 Retry-After 时的轮询间隔
func (c *Client) SetPollInterval(interval time.Duration) {
	if interval > 0 {
		c.pollInterval = interval
	}
}

// SetHTTPClient 替换底层 HTTP 客户端
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetLogger 设置日志记录器
func (c *Client) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// maskedKey 返回打码后的密钥，用于日志
func (c *Client) maskedKey() string {
	if len(c.key) > 8 {
		return c.key[:4] + strings.Repeat("*", len(c.key)-8) + c.key[len(c.key)-4:]
	}
	return "****"
}

// AnalyzeFromURL 提交文档 URL 进行分析，并阻塞直到分析完成
func (c *Client) AnalyzeFromURL(ctx context.Context, model, documentURL string) (*AnalyzeResult, error) {
	if _, err := url.ParseRequestURI(documentURL); err != nil {
		return nil, fmt.Errorf("无效的文档URL: %w", err)
	}

	operationURL, err := c.beginAnalyze(ctx, model, documentURL)
	if err != nil {
		return nil, err
	}

	return c.waitForResult(ctx, operationURL)
}

// beginAnalyze 提交分析请求，返回 Operation-Location
func (c *Client) beginAnalyze(ctx context.Context, model, documentURL string) (string, error) {
	requestBody, err := json.Marshal(analyzeRequest{URLSource: documentURL})
	if err != nil {
		return "", fmt.Errorf("创建请求体错误: %w", err)
	}

	requestURL := fmt.Sprintf("%sformrecognizer/documentModels/%s:analyze?api-version=%s",
		c.endpoint, url.PathEscape(model), url.QueryEscape(c.apiVersion))

	c.logger.Debug("提交文档分析",
		zap.String("url", requestURL),
		zap.String("document", documentURL),
		zap.String("key", c.maskedKey()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("创建请求错误: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("发送请求错误: %w", err)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("读取响应体错误: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		return "", &APIError{Op: "提交分析", StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", fmt.Errorf("响应缺少 Operation-Location")
	}
	return operationURL, nil
}

// waitForResult 轮询分析操作直到成功或失败
func (c *Client) waitForResult(ctx context.Context, operationURL string) (*AnalyzeResult, error) {
	delay := c.pollInterval
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}

		op, retryAfter, raw, err := c.getOperation(ctx, operationURL)
		if err != nil {
			return nil, err
		}

		c.logger.Debug("分析状态", zap.String("status", op.Status), zap.Int("attempt", attempt))

		switch op.Status {
		case StatusSucceeded:
			if op.AnalyzeResult == nil {
				return nil, fmt.Errorf("分析成功但响应缺少 analyzeResult")
			}
			result := op.AnalyzeResult
			result.RawResponse = raw
			c.logger.Debug("文档分析完成", zap.Int("pages", len(result.Pages)))
			return result, nil
		case StatusFailed:
			if op.Error != nil {
				return nil, &OperationError{Code: op.Error.Code, Message: op.Error.Message}
			}
			return nil, &OperationError{Code: "Unknown", Message: "未返回错误信息"}
		case StatusNotStarted, StatusRunning:
		default:
			return nil, fmt.Errorf("未知的分析状态: %q", op.Status)
		}

		delay = c.pollInterval
		if retryAfter > 0 {
			delay = retryAfter
		}
	}
}

// getOperation 获取一次分析操作的状态
func (c *Client) getOperation(ctx context.Context, operationURL string) (*AnalyzeOperation, time.Duration, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("创建请求错误: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("发送请求错误: %w", err)
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, 0, nil, fmt.Errorf("读取响应体错误: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, 0, nil, &APIError{Op: "获取分析结果", StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	var op AnalyzeOperation
	if err := json.Unmarshal(bodyBytes, &op); err != nil {
		return nil, 0, nil, fmt.Errorf("解析响应错误: %w", err)
	}

	var retryAfter time.Duration
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		retryAfter = time.Duration(secs) * time.Second
	}

	return &op, retryAfter, bodyBytes, nil
}

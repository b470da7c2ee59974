package documentcloud

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

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// idsPerRequest 按 ID 查询时每个请求携带的最大 ID 数
const idsPerRequest = 25

// APIError 表示 DocumentCloud 返回了非成功状态码
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s 失败，状态码 %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Client 表示 DocumentCloud API 客户端
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient 创建一个新的 DocumentCloud 客户端
func NewClient(baseURL, token string) *Client {
	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
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

// ListDocuments 列出选中的文档，按服务端返回顺序并跟随 next 分页
func (c *Client) ListDocuments(ctx context.Context, sel Selection) ([]Document, error) {
	var docs []Document

	if len(sel.IDs) > 0 {
		for start := 0; start < len(sel.IDs); start += idsPerRequest {
			end := min(start+idsPerRequest, len(sel.IDs))
			ids := make([]string, 0, end-start)
			for _, id := range sel.IDs[start:end] {
				ids = append(ids, strconv.FormatInt(id, 10))
			}
			query := url.Values{}
			query.Set("id__in", strings.Join(ids, ","))
			query.Set("per_page", strconv.Itoa(idsPerRequest))

			page, err := c.listAll(ctx, "documents/?"+query.Encode())
			if err != nil {
				return nil, err
			}
			docs = append(docs, page...)
		}
		return docs, nil
	}

	if q := strings.TrimSpace(sel.Query); q != "" {
		query := url.Values{}
		query.Set("q", q)
		query.Set("per_page", strconv.Itoa(idsPerRequest))
		return c.listAll(ctx, "documents/search/?"+query.Encode())
	}

	return nil, nil
}

func (c *Client) listAll(ctx context.Context, path string) ([]Document, error) {
	var docs []Document
	for path != "" {
		var resp listResponse
		status, err := c.do(ctx, http.MethodGet, path, nil, &resp)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("列出文档失败，状态码 %d", status)
		}
		docs = append(docs, resp.Results...)
		c.logger.Debug("获取文档列表", zap.Int("count", len(resp.Results)), zap.Int("total", resp.Count))

		path = ""
		if resp.Next != nil {
			path = *resp.Next
		}
	}
	return docs, nil
}

// ChargeCredits 为组织预扣 AI 积分，只有 200 视为成功
func (c *Client) ChargeCredits(ctx context.Context, orgID string, credits int, runID string) error {
	path := fmt.Sprintf("organizations/%s/ai_credits/", url.PathEscape(orgID))
	status, err := c.do(ctx, http.MethodPost, path, chargeRequest{AICredits: credits, AddOnRunID: runID}, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &APIError{Method: http.MethodPost, Path: path, StatusCode: status}
	}
	c.logger.Info("已扣除AI积分", zap.String("organization", orgID), zap.Int("credits", credits))
	return nil
}

// PatchPages 将识别出的页面写回文档
func (c *Client) PatchPages(ctx context.Context, docID int64, pages []Page) error {
	path := fmt.Sprintf("documents/%d/", docID)
	_, err := c.do(ctx, http.MethodPatch, path, pagesRequest{Pages: pages}, nil)
	return err
}

// SetMessage 设置 Add-On 运行的提示信息，runID 为空时不发送
func (c *Client) SetMessage(ctx context.Context, runID, message string) error {
	return c.updateRun(ctx, runID, runUpdate{Message: &message})
}

// SetProgress 设置 Add-On 运行的进度百分比，runID 为空时不发送
func (c *Client) SetProgress(ctx context.Context, runID string, progress int) error {
	return c.updateRun(ctx, runID, runUpdate{Progress: &progress})
}

func (c *Client) updateRun(ctx context.Context, runID string, update runUpdate) error {
	if runID == "" {
		return nil
	}
	id, err := uuid.Parse(runID)
	if err != nil {
		return fmt.Errorf("无效的运行ID %q: %w", runID, err)
	}
	_, err = c.do(ctx, http.MethodPatch, fmt.Sprintf("addon_runs/%s/", id), update, nil)
	return err
}

// do 发送请求并解析 JSON 响应
// 状态码 >= 400 时返回 *APIError，其余状态码交给调用方判断
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	requestURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		requestURL = c.baseURL + path
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("创建请求体错误: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reader)
	if err != nil {
		return 0, fmt.Errorf("创建请求错误: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.logger.Debug("发送请求", zap.String("method", method), zap.String("url", requestURL))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("发送请求错误: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("读取响应体错误: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return resp.StatusCode, fmt.Errorf("解析响应错误: %w", err)
		}
	}
	return resp.StatusCode, nil
}

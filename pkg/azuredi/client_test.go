package azuredi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const succeededBody = `{
  "status": "succeeded",
  "analyzeResult": {
    "apiVersion": "2023-07-31",
    "modelId": "prebuilt-read",
    "content": "Hello",
    "pages": [{
      "pageNumber": 1,
      "width": 1000,
      "height": 2000,
      "unit": "pixel",
      "words": [{"content": "Hello", "polygon": [100,100,300,100,300,150,100,150], "confidence": 0.99}],
      "lines": [{"content": "Hello", "polygon": [100,100,300,100,300,150,100,150]}]
    }]
  }
}`

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := NewClient(serverURL, "test-key-123456")
	require.NoError(t, err)
	c.SetPollInterval(time.Millisecond)
	return c
}

func TestNewClient_MissingConfig(t *testing.T) {
	_, err := NewClient("https://example.cognitiveservices.azure.com/", "")
	assert.ErrorIs(t, err, ErrMissingCredential)

	_, err = NewClient("", "key")
	assert.ErrorIs(t, err, ErrMissingEndpoint)

	_, err = NewClient("not a url", "key")
	assert.Error(t, err)
}

func TestAnalyzeFromURL_PollsUntilSucceeded(t *testing.T) {
	var polls atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key-123456", r.Header.Get("Ocp-Apim-Subscription-Key"))

		switch {
		case r.Method == http.MethodPost:
			assert.Equal(t, "/formrecognizer/documentModels/prebuilt-read:analyze", r.URL.Path)
			assert.Equal(t, DefaultAPIVersion, r.URL.Query().Get("api-version"))

			var body map[string]string
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "https://assets.example.org/documents/1/doc.pdf", body["urlSource"])

			w.Header().Set("Operation-Location", server.URL+"/operations/abc")
			w.WriteHeader(http.StatusAccepted)
		case r.Method == http.MethodGet && r.URL.Path == "/operations/abc":
			if polls.Add(1) < 3 {
				_, _ = w.Write([]byte(`{"status": "running"}`))
				return
			}
			_, _ = w.Write([]byte(succeededBody))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	result, err := c.AnalyzeFromURL(context.Background(), ModelRead, "https://assets.example.org/documents/1/doc.pdf")
	require.NoError(t, err)

	assert.EqualValues(t, 3, polls.Load())
	require.Len(t, result.Pages, 1)
	page := result.Pages[0]
	assert.Equal(t, 1000.0, page.Width)
	assert.Equal(t, 2000.0, page.Height)
	require.Len(t, page.Words, 1)
	assert.Equal(t, []Point{{100, 100}, {300, 100}, {300, 150}, {100, 150}}, page.Words[0].Polygon.Points())
	assert.Equal(t, "Hello", page.Lines[0].Content)
	assert.NotEmpty(t, result.RawResponse)
}

func TestAnalyzeFromURL_OperationFailed(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", server.URL+"/operations/abc")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status": "failed", "error": {"code": "InvalidContent", "message": "The file is corrupted"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.AnalyzeFromURL(context.Background(), ModelRead, "https://assets.example.org/a.pdf")

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "InvalidContent", opErr.Code)
	assert.Equal(t, "The file is corrupted", opErr.Message)
}

func TestAnalyzeFromURL_SubmitRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"code": "401"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.AnalyzeFromURL(context.Background(), ModelRead, "https://assets.example.org/a.pdf")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestAnalyzeFromURL_MissingOperationLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.AnalyzeFromURL(context.Background(), ModelRead, "https://assets.example.org/a.pdf")
	assert.ErrorContains(t, err, "Operation-Location")
}

func TestAnalyzeFromURL_InvalidDocumentURL(t *testing.T) {
	c := newTestClient(t, "https://example.cognitiveservices.azure.com")
	_, err := c.AnalyzeFromURL(context.Background(), ModelRead, "not-a-url")
	assert.Error(t, err)
}

func TestAnalyzeFromURL_ContextCanceled(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.Header().Set("Operation-Location", server.URL+"/operations/abc")
			w.WriteHeader(http.StatusAccepted)
			return
		}
		_, _ = w.Write([]byte(`{"status": "running"}`))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.AnalyzeFromURL(ctx, ModelRead, "https://assets.example.org/a.pdf")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPolygonPoints_IgnoresTrailingCoordinate(t *testing.T) {
	assert.Equal(t, []Point{{1, 2}}, Polygon{1, 2, 3}.Points())
	assert.Empty(t, Polygon(nil).Points())
}

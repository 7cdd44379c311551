package api

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/diogo/estatechat/internal/models"
)

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	AnalyzeVal  *models.AnalyticsResponse
	AnalyzeErr  error
	AnalyzeFunc func(ctx context.Context, req *Request) (*models.AnalyticsResponse, error)
	PDFVal      []byte
	PDFErr      error
	BaseURLVal  string

	// Call counters/recorders
	mu           sync.Mutex
	AnalyzeCalls int
	PDFCalls     int
	LastRequest  *Request
	LastPayload  *models.ExportPayload
	CloseCalled  bool
}

var _ ClientInterface = (*MockClient)(nil)

func (m *MockClient) Analyze(ctx context.Context, req *Request) (*models.AnalyticsResponse, error) {
	m.mu.Lock()
	m.AnalyzeCalls++
	m.LastRequest = req
	fn := m.AnalyzeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	return m.AnalyzeVal, m.AnalyzeErr
}

func (m *MockClient) RenderPDF(_ context.Context, payload models.ExportPayload) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PDFCalls++
	m.LastPayload = &payload

	if m.PDFErr != nil {
		return nil, m.PDFErr
	}
	return io.NopCloser(bytes.NewReader(m.PDFVal)), nil
}

func (m *MockClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return models.DefaultBaseURL
	}
	return m.BaseURLVal
}

func (m *MockClient) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
}

// Calls returns the number of Analyze calls so far
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.AnalyzeCalls
}

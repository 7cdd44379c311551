package api

import (
	"bytes"
	"io"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockHttpClient records requests and answers with a canned response
type MockHttpClient struct {
	Response *fhttp.Response
	Err      error

	mu       sync.Mutex
	requests []*fhttp.Request
	bodies   [][]byte
}

// Do implements HTTPDoer
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.bodies = append(m.bodies, body)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockHttpClient) lastRequest() (*fhttp.Request, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil, nil
	}
	return m.requests[len(m.requests)-1], m.bodies[len(m.bodies)-1]
}

// trackingBody reports whether the response body was closed
type trackingBody struct {
	*bytes.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

// NewMockHttpClient creates a MockHttpClient answering body with statusCode
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       &trackingBody{Reader: bytes.NewReader(body)},
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a MockHttpClient that fails every call
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{Err: err}
}

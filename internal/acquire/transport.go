package acquire

import (
	"io"
	"net/http"
	"net/url"
	"strings"
)

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Get(url string) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

func (f *RealHTTPFetcher) Get(url string) (*http.Response, error) {
	return f.client.Get(url)
}

// MockHTTPFetcher simulates HTTP responses for testing
type MockHTTPFetcher struct {
	responses map[string]*http.Response
	errors    map[string]error
	requests  []string
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string]*http.Response),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a mock response for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body []byte) {
	parsedURL, _ := url.Parse(urlStr)
	m.responses[urlStr] = &http.Response{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Body:       io.NopCloser(strings.NewReader(string(body))),
		Header:     make(http.Header),
		Request: &http.Request{
			URL: parsedURL,
		},
	}
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.errors[urlStr] = err
}

// Requests returns every URL fetched through the mock, in order.
func (m *MockHTTPFetcher) Requests() []string {
	return m.requests
}

func (m *MockHTTPFetcher) Get(urlStr string) (*http.Response, error) {
	m.requests = append(m.requests, urlStr)
	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}
	if resp, ok := m.responses[urlStr]; ok {
		return resp, nil
	}
	// Return 404 for unknown URLs
	return &http.Response{
		StatusCode: 404,
		Status:     "Not Found",
		Body:       io.NopCloser(strings.NewReader("Not Found")),
		Header:     make(http.Header),
	}, nil
}

package httputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds every request made with the package client.
var DefaultTimeout = 30 * time.Second

var client = &http.Client{Timeout: DefaultTimeout}

// NewHTTPRequest performs the http call and returns the status code and the
// raw body of the response. Only GET and POST verbs are supported.
func NewHTTPRequest(
	ctx context.Context, method, url string, body []byte, header map[string]string,
) (int, []byte, error) {
	switch method {
	case http.MethodGet:
		return do(ctx, method, url, nil, header)
	case http.MethodPost:
		return do(ctx, method, url, bytes.NewReader(body), header)
	default:
		return 0, nil, fmt.Errorf("verb not supported %s", method)
	}
}

func do(
	ctx context.Context, method, url string, body io.Reader, header map[string]string,
) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return 0, nil, err
	}

	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return rs.StatusCode, bodyBytes, nil
}

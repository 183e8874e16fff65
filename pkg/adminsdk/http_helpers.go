package adminsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// url builds a complete URL from path and optional query.
func (c *Client) url(path string, query url.Values) string {
	if len(query) == 0 {
		return c.BaseURL + path
	}
	return c.BaseURL + path + "?" + query.Encode()
}

// doRequest sends body as JSON when non-nil. The cookie jar supplies the
// session.
func (c *Client) doRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	headers map[string]string,
) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), rd)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

// call performs the request and decodes the data envelope into T.
func call[T any](
	ctx context.Context,
	c *Client,
	method, path string,
	query url.Values,
	body any,
	headers map[string]string,
	expectedStatus int,
) (T, error) {
	var zero T

	resp, err := c.doRequest(ctx, method, path, query, body, headers)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != expectedStatus {
		return zero, parseErrorResponse(resp.StatusCode, bodyBytes)
	}

	var env envelope[T]
	if len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, &env); err != nil {
			return zero, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return env.Data, nil
}

// callNoData is call for endpoints that answer with a bare success envelope.
func callNoData(
	ctx context.Context,
	c *Client,
	method, path string,
	body any,
	expectedStatus int,
) error {
	_, err := call[json.RawMessage](ctx, c, method, path, nil, body, nil, expectedStatus)
	return err
}

func parseErrorResponse(status int, body []byte) error {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err != nil || er.Error == "" {
		return &APIError{StatusCode: status, Code: http.StatusText(status), Message: string(body)}
	}
	return &APIError{
		StatusCode: status,
		Code:       er.Error,
		Message:    er.Message,
		Fields:     er.Fields,
	}
}

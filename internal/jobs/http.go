package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shaiso/bootkit/internal/telemetry"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPJob — job типа "http".
//
// Config:
//   - method (string): HTTP-метод. Default: GET
//   - url (string): URL для запроса (обязательно)
//   - headers (map[string]string): HTTP-заголовки
//   - body (any): тело запроса (сериализуется в JSON)
//   - timeout_sec (number): таймаут запроса в секундах. Default: 30
//
// Ответ с кодом >= 400 считается ошибкой.
type HTTPJob struct {
	method  string
	url     string
	headers map[string]string
	body    []byte
	timeout time.Duration
	client  *http.Client
}

// NewHTTPJob создаёт HTTPJob из конфигурации.
func NewHTTPJob(config map[string]any) (*HTTPJob, error) {
	rawURL := getString(config, "url", "")
	if rawURL == "" {
		return nil, fmt.Errorf("%w: %s: url is required", ErrInvalidJob, TypeHTTP)
	}
	if u, err := url.Parse(rawURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %s: invalid url %q", ErrInvalidJob, TypeHTTP, rawURL)
	}

	job := &HTTPJob{
		method:  strings.ToUpper(getString(config, "method", http.MethodGet)),
		url:     rawURL,
		headers: getStringMap(config, "headers"),
		timeout: getTimeout(config, defaultHTTPTimeout),
		client:  &http.Client{},
	}

	if body, ok := config["body"]; ok && body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: marshal body: %v", ErrInvalidJob, TypeHTTP, err)
		}
		job.body = data
	}

	return job, nil
}

// Run выполняет HTTP-запрос.
func (j *HTTPJob) Run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	var bodyReader io.Reader
	if j.body != nil {
		bodyReader = bytes.NewReader(j.body)
	}

	req, err := http.NewRequestWithContext(ctx, j.method, j.url, bodyReader)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrHTTPRequest, err)
	}

	for key, val := range j.headers {
		req.Header.Set(key, val)
	}

	// Content-Type по умолчанию для запросов с body
	if bodyReader != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHTTPRequest, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrHTTPRequest, err)
	}

	telemetry.FromContext(ctx).Debug("http job response",
		"method", j.method,
		"url", j.url,
		"status_code", resp.StatusCode,
	)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrHTTPRequest, resp.StatusCode, truncate(string(respBody), 200))
	}

	return nil
}

package provider

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zeromicro/go-zero/rest/httpc"
)

// Option customizes the HTTP based adapters.
type Option func(*httpOptions)

type httpOptions struct {
	baseURL string
	client  *http.Client
}

// WithBaseURL points an adapter at a different endpoint.
func WithBaseURL(baseURL string) Option {
	return func(o *httpOptions) {
		if strings.TrimSpace(baseURL) != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *httpOptions) {
		if client != nil {
			o.client = client
		}
	}
}

func buildOptions(defaultURL string, opts []Option) httpOptions {
	o := httpOptions{baseURL: defaultURL, client: http.DefaultClient}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newService wraps client in a go-zero httpc service named after the
// provider so each backend gets its own breaker.
func newService(name string, client *http.Client, headers map[string]string) httpc.Service {
	return httpc.NewServiceWithClient(name, client, func(r *http.Request) *http.Request {
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	})
}

// doJSON sends payload and returns the response, failing on non-2xx status.
func doJSON(ctx context.Context, svc httpc.Service, method, url string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := svc.DoRequest(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return resp, nil
}

// decodeJSON reads resp into v and closes the body.
func decodeJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readSSE calls fn with every `data:` payload until [DONE] or EOF.
func readSSE(r io.Reader, fn func(payload []byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		if payload == "[DONE]" {
			return nil
		}
		if err := fn([]byte(payload)); err != nil {
			return err
		}
	}
	return scanner.Err()
}

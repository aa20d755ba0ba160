package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"qcloud/internal/domain"
)

const maxResponseBytes = 64 << 20

// HTTPTransport posts JSON bodies to the cloud service. It performs exactly
// one attempt per call.
type HTTPTransport struct {
	client *http.Client
	logger *zap.Logger
}

type HTTPTransportOptions struct {
	Logger  *zap.Logger
	Timeout time.Duration
	// Base overrides the round tripper, mainly for tests.
	Base http.RoundTripper
}

func NewHTTPTransport(opts HTTPTransportOptions) *HTTPTransport {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultRequestTimeoutSeconds * time.Second
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &headerRoundTripper{base: base, headers: protocolHeaders()},
		},
		logger: logger.Named("transport"),
	}
}

func (t *HTTPTransport) Post(ctx context.Context, url string, body []byte) ([]byte, error) {
	const op = "transport.Post"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, domain.E(domain.CodeTransport, op, "build request", err)
	}

	started := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, domain.Wrap(codeForContext(ctxErr), op, ctxErr)
		}
		return nil, domain.E(domain.CodeTransport, op, "", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.E(domain.CodeTransport, op, "read response", err)
	}
	t.logger.Debug("post completed",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(started)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.E(domain.CodeTransport, op, fmt.Sprintf("unexpected http status %d", resp.StatusCode), nil).
			WithMeta("url", url)
	}
	return data, nil
}

func codeForContext(err error) domain.ErrorCode {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.CodeDeadlineExceeded
	}
	return domain.CodeCanceled
}

func protocolHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json;charset=UTF-8")
	headers.Set("Connection", "keep-alive")
	headers.Set("Origin-Language", "en")
	return headers
}

type headerRoundTripper struct {
	base    http.RoundTripper
	headers http.Header
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for key, values := range h.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	return h.base.RoundTrip(req)
}

var _ domain.Transport = (*HTTPTransport)(nil)

package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPPublisher posts telemetry to the platform's per-device REST endpoint.
type HTTPPublisher struct {
	baseURL string
	store   *TokenStore
	client  *http.Client
}

// NewHTTP validates tokens for all devices and prepares a shared HTTP client.
func NewHTTP(cfg Config, store *TokenStore, deviceIDs []string) (*HTTPPublisher, error) {
	if err := store.Validate(deviceIDs); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	scheme := "http"
	if cfg.TLS {
		scheme = "https"
	}

	return &HTTPPublisher{
		baseURL: fmt.Sprintf("%s://%s:%d", scheme, cfg.Host, cfg.Port),
		store:   store,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

func (p *HTTPPublisher) Publish(ctx context.Context, payload machine.Payload) error {
	token, err := p.store.Resolve(payload.DeviceID)
	if err != nil {
		return err
	}

	body, err := encodePayload(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/%s/telemetry", p.baseURL, token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.New().WithData(ErrStatus, resp.StatusCode)
	}

	return nil
}

func (p *HTTPPublisher) Close() error {
	p.client.CloseIdleConnections()

	return nil
}

package publish

import (
	"context"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// Protocol selects the transport used to reach the telemetry platform.
type Protocol string

const (
	ProtocolMQTT   Protocol = "mqtt"
	ProtocolHTTP   Protocol = "http"
	ProtocolInflux Protocol = "influx"
	ProtocolNone   Protocol = "none"
)

// Publisher delivers one machine payload to the telemetry platform.
// Implementations are safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, payload machine.Payload) error
	Close() error
}

// Config holds transport settings shared by the publisher backends.
type Config struct {
	Protocol Protocol
	Host     string
	Port     int
	TLS      bool
	QoS      byte
	Timeout  time.Duration
	Influx   InfluxConfig
}

// New builds the publisher selected by cfg.Protocol. Device tokens are
// validated up front for the token-based transports so that a missing
// credential fails at startup rather than on the first tick.
func New(ctx context.Context, cfg Config, store *TokenStore, deviceIDs []string) (Publisher, error) {
	switch cfg.Protocol {
	case ProtocolMQTT:
		return NewMQTT(cfg, store, deviceIDs)
	case ProtocolHTTP:
		return NewHTTP(cfg, store, deviceIDs)
	case ProtocolInflux:
		return NewInflux(ctx, cfg.Influx)
	case ProtocolNone:
		return NewNoop(), nil
	default:
		return nil, errors.New().WithData(ErrInvalidProtocol, string(cfg.Protocol))
	}
}

package publish

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// telemetryTopic is the ThingsBoard device telemetry topic. The device
// identity comes from the connection credentials, not the topic.
const telemetryTopic = "v1/devices/me/telemetry"

const (
	defaultConnectTimeout = 10 * time.Second
	defaultPublishTimeout = 5 * time.Second
	disconnectQuiesceMs   = 250
)

// MQTTPublisher maintains one broker connection per device, authenticated
// with that device's access token.
type MQTTPublisher struct {
	clients        map[string]mqtt.Client
	qos            byte
	publishTimeout time.Duration
}

// NewMQTT connects one client per device and fails if any device lacks a
// token or any connection cannot be established.
func NewMQTT(cfg Config, store *TokenStore, deviceIDs []string) (*MQTTPublisher, error) {
	if err := store.Validate(deviceIDs); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	p := &MQTTPublisher{
		clients:        make(map[string]mqtt.Client, len(deviceIDs)),
		qos:            cfg.QoS,
		publishTimeout: defaultPublishTimeout,
	}

	broker := fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	for _, id := range deviceIDs {
		token, err := store.Resolve(id)
		if err != nil {
			p.closeAll()

			return nil, err
		}

		opts := mqtt.NewClientOptions().
			AddBroker(broker).
			SetClientID("fleetsim-" + id).
			SetUsername(string(token)).
			SetConnectTimeout(timeout).
			SetAutoReconnect(true)

		client := mqtt.NewClient(opts)
		connToken := client.Connect()
		if !connToken.WaitTimeout(timeout) {
			p.closeAll()

			return nil, errors.New().WithData(ErrConnect, id)
		}
		if err := connToken.Error(); err != nil {
			p.closeAll()

			return nil, errors.New().Wrap(ErrConnect, err)
		}

		p.clients[id] = client
		logger.Debug().Str("device_id", id).Str("broker", broker).Msg("MQTT client connected")
	}

	return p, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, payload machine.Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	client, ok := p.clients[payload.DeviceID]
	if !ok {
		return errors.New().WithData(ErrMissingToken, payload.DeviceID)
	}

	body, err := encodePayload(payload)
	if err != nil {
		return err
	}

	token := client.Publish(telemetryTopic, p.qos, false, body)
	if !token.WaitTimeout(p.publishTimeout) {
		return errors.New().WithData(ErrTimeout, payload.DeviceID)
	}
	if err := token.Error(); err != nil {
		return errors.New().Wrap(ErrPublish, err)
	}

	return nil
}

func (p *MQTTPublisher) Close() error {
	p.closeAll()

	return nil
}

func (p *MQTTPublisher) closeAll() {
	for _, client := range p.clients {
		if client.IsConnected() {
			client.Disconnect(disconnectQuiesceMs)
		}
	}
}

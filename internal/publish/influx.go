package publish

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

const influxMeasurement = "sensor_data"

// InfluxConfig holds the connection settings for an InfluxDB 2.x server.
type InfluxConfig struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

// InfluxPublisher writes one point per sensor reading, keyed by machine and
// sensor tags. It bypasses the telemetry platform entirely.
type InfluxPublisher struct {
	client influxdb2.Client
	writer api.WriteAPIBlocking
}

// NewInflux connects and pings the server so a bad URL or token fails at
// startup.
func NewInflux(ctx context.Context, cfg InfluxConfig) (*InfluxPublisher, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	ok, err := client.Ping(pingCtx)
	if err != nil {
		client.Close()

		return nil, errors.New().Wrap(ErrConnect, err)
	}
	if !ok {
		client.Close()

		return nil, errors.New().WithData(ErrConnect, cfg.URL)
	}

	logger.Debug().Str("url", cfg.URL).Str("bucket", cfg.Bucket).Msg("InfluxDB connection established")

	return &InfluxPublisher{
		client: client,
		writer: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
	}, nil
}

func (p *InfluxPublisher) Publish(ctx context.Context, payload machine.Payload) error {
	for _, reading := range payload.Readings {
		point := influxdb2.NewPoint(influxMeasurement,
			map[string]string{
				"machine_id":   reading.MachineID,
				"machine_type": string(payload.Type),
				"sensor_name":  reading.Sensor,
				"unit":         reading.Unit,
			},
			map[string]interface{}{
				"value": reading.Value,
			},
			time.UnixMilli(reading.Timestamp))
		if err := p.writer.WritePoint(ctx, point); err != nil {
			return errors.New().Wrap(ErrPublish, err)
		}
	}

	return nil
}

func (p *InfluxPublisher) Close() error {
	p.client.Close()

	return nil
}

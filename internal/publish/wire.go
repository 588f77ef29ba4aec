package publish

import (
	"encoding/json"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// telemetryEnvelope is the ThingsBoard telemetry wire format: a millisecond
// timestamp alongside a flat key-value object.
type telemetryEnvelope struct {
	TS     int64          `json:"ts"`
	Values map[string]any `json:"values"`
}

func encodePayload(payload machine.Payload) ([]byte, error) {
	values := make(map[string]any, len(payload.Values)+1)
	for name, value := range payload.Values {
		values[name] = value
	}
	values["machine_type"] = string(payload.Type)

	body, err := json.Marshal(telemetryEnvelope{
		TS:     payload.Timestamp,
		Values: values,
	})
	if err != nil {
		return nil, errors.New().Wrap(ErrEncode, err)
	}

	return body, nil
}

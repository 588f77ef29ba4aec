package publish

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/machine"
)

func TestEncodePayload(t *testing.T) {
	payload := machine.Payload{
		DeviceID:  "MIXER_001",
		Type:      machine.Mixer,
		Timestamp: 1700000000000,
		Values: map[string]float64{
			"RTD_PT100":   42.17,
			"POWER_METER": 120.5,
		},
	}

	body, err := encodePayload(payload)
	require.NoError(t, err)

	var decoded struct {
		TS     int64          `json:"ts"`
		Values map[string]any `json:"values"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, int64(1700000000000), decoded.TS)
	assert.Equal(t, 42.17, decoded.Values["RTD_PT100"])
	assert.Equal(t, 120.5, decoded.Values["POWER_METER"])
	assert.Equal(t, "MIXER", decoded.Values["machine_type"])
}

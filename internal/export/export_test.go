package export_test

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/export"
	"codeberg.org/vasker/fleetsim/internal/machine"
	"codeberg.org/vasker/fleetsim/internal/sensor"
)

func testPayload(deviceID string, ts int64) machine.Payload {
	return machine.Payload{
		DeviceID:  deviceID,
		Type:      machine.Mixer,
		Timestamp: ts,
		Readings: []sensor.Reading{
			{MachineID: deviceID, Sensor: "RTD_PT100", Unit: "°C", Value: 42.5, Timestamp: ts},
			{MachineID: deviceID, Sensor: "POWER_METER", Unit: "kW", Value: 120.01, Timestamp: ts},
		},
		Values: map[string]float64{
			"RTD_PT100":   42.5,
			"POWER_METER": 120.01,
		},
	}
}

func TestNoopWhenUnconfigured(t *testing.T) {
	rec, err := export.NewService(export.Config{})
	require.NoError(t, err)

	require.NoError(t, rec.Record(context.Background(), testPayload("MIXER_001", 1)))
	require.NoError(t, rec.Close())
}

func TestValidateRejectsSharedPath(t *testing.T) {
	_, err := export.NewService(export.Config{JSONPath: "out.db", DBPath: "out.db"})
	require.Error(t, err)
}

func TestJSONLinesExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payloads.jsonl")

	rec, err := export.NewService(export.Config{JSONPath: path})
	require.NoError(t, err)

	for i := int64(1); i <= 3; i++ {
		require.NoError(t, rec.Record(context.Background(), testPayload("MIXER_001", i*1000)))
	}
	require.NoError(t, rec.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 3)
	assert.Equal(t, "MIXER_001", lines[0]["device_id"])
	assert.Equal(t, "MIXER", lines[0]["machine_type"])
	assert.Equal(t, float64(1000), lines[0]["ts"])
	values, ok := lines[0]["values"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 42.5, values["RTD_PT100"])
}

func TestArchiveExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")

	rec, err := export.NewService(export.Config{DBPath: path, BatchSize: 2})
	require.NoError(t, err)

	require.NoError(t, rec.Record(context.Background(), testPayload("MIXER_001", 1000)))
	require.NoError(t, rec.Record(context.Background(), testPayload("PUMP_SYSTEM_001", 1000)))
	require.NoError(t, rec.Record(context.Background(), testPayload("MIXER_001", 2000)))
	require.NoError(t, rec.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var total int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM readings").Scan(&total))
	assert.Equal(t, 6, total, "two readings per payload")

	var mixerRows int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM readings WHERE machine_id = ?", "MIXER_001").Scan(&mixerRows))
	assert.Equal(t, 4, mixerRows)

	var value float64
	require.NoError(t, db.QueryRow(
		"SELECT value FROM readings WHERE machine_id = ? AND sensor = ? AND ts = ?",
		"MIXER_001", "RTD_PT100", int64(1000)).Scan(&value))
	assert.Equal(t, 42.5, value)
}

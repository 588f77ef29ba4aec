package publish_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/vasker/fleetsim/internal/machine"
	"codeberg.org/vasker/fleetsim/internal/publish"
)

func serverConfig(t *testing.T, ts *httptest.Server) publish.Config {
	t.Helper()

	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return publish.Config{
		Protocol: publish.ProtocolHTTP,
		Host:     host,
		Port:     port,
	}
}

func TestHTTPPublish(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var gotBody map[string]any

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	store := publish.NewTokenStore(map[string]publish.Credential{
		"MIXER_001": "secret-token",
	})

	pub, err := publish.NewHTTP(serverConfig(t, ts), store, []string{"MIXER_001"})
	require.NoError(t, err)
	defer pub.Close()

	err = pub.Publish(context.Background(), machine.Payload{
		DeviceID:  "MIXER_001",
		Type:      machine.Mixer,
		Timestamp: 1700000000000,
		Values:    map[string]float64{"RTD_PT100": 55.5},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/api/v1/secret-token/telemetry", gotPath)
	assert.Equal(t, float64(1700000000000), gotBody["ts"])
	values, ok := gotBody["values"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 55.5, values["RTD_PT100"])
}

func TestHTTPPublishBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	store := publish.NewSingleToken("tok")
	pub, err := publish.NewHTTP(serverConfig(t, ts), store, []string{"MIXER_001"})
	require.NoError(t, err)
	defer pub.Close()

	err = pub.Publish(context.Background(), machine.Payload{DeviceID: "MIXER_001"})
	require.Error(t, err)
}

func TestNewHTTPValidatesTokens(t *testing.T) {
	store := publish.NewTokenStore(nil)

	_, err := publish.NewHTTP(publish.Config{Host: "localhost", Port: 8080}, store, []string{"MIXER_001"})
	require.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	pub := publish.NewNoop()
	require.NoError(t, pub.Publish(context.Background(), machine.Payload{DeviceID: "MIXER_001"}))
	require.NoError(t, pub.Close())
}

func TestNewRejectsUnknownProtocol(t *testing.T) {
	_, err := publish.New(context.Background(), publish.Config{Protocol: "carrier-pigeon"}, publish.NewTokenStore(nil), nil)
	require.Error(t, err)
}

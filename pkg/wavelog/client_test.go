package wavelog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/rigsync/pkg/protocol"
)

type captured struct {
	path        string
	contentType string
	body        map[string]interface{}
}

func newServer(t *testing.T, status int) (*httptest.Server, chan captured) {
	got := make(chan captured, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		got <- captured{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: body}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"status":"x"}`))
	}))
	t.Cleanup(server.Close)
	return server, got
}

func TestUploadLiveState(t *testing.T) {
	server, got := newServer(t, http.StatusOK)
	client := NewClient(ClientConfig{RadioURL: server.URL + "/api/radio", Key: "secret"})

	snap := protocol.RigSnapshot{Frequency: 14074000, Mode: "D-USB", Power: "25"}
	require.NoError(t, client.UploadLiveState(context.Background(), snap.RadioData("secret", "FT-991A")))

	req := <-got
	assert.Equal(t, "/api/radio", req.path)
	assert.Equal(t, "application/json", req.contentType)
	assert.Equal(t, map[string]interface{}{
		"key":       "secret",
		"radio":     "FT-991A",
		"frequency": "14074000",
		"mode":      "D-USB",
		"power":     "25",
	}, req.body)
}

func TestUploadContactRecord(t *testing.T) {
	server, got := newServer(t, http.StatusCreated)
	client := NewClient(ClientConfig{
		QSOURL:           server.URL + "/api/qso",
		Key:              "secret",
		StationProfileID: 3,
	})

	adif := "<call:5>K1ABC <mode:3>FT8 <eor>"
	require.NoError(t, client.UploadContactRecord(context.Background(), adif))

	req := <-got
	assert.Equal(t, "/api/qso", req.path)
	assert.Equal(t, "secret", req.body["key"])
	assert.Equal(t, float64(3), req.body["station_profile_id"])
	assert.Equal(t, "adif", req.body["type"])
	assert.Equal(t, adif, req.body["string"])
}

func TestUploadErrors(t *testing.T) {
	t.Run("Non 2xx", func(t *testing.T) {
		server, _ := newServer(t, http.StatusUnauthorized)
		client := NewClient(ClientConfig{RadioURL: server.URL, QSOURL: server.URL})

		err := client.UploadLiveState(context.Background(), protocol.RadioData{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 401")

		err = client.UploadContactRecord(context.Background(), "<eor>")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "contact upload failed")
	})

	t.Run("No QSO URL", func(t *testing.T) {
		client := NewClient(ClientConfig{})
		assert.Error(t, client.UploadContactRecord(context.Background(), "<eor>"))
	})

	t.Run("Timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewClient(ClientConfig{RadioURL: server.URL, Timeout: 20 * time.Millisecond})
		assert.Error(t, client.UploadLiveState(context.Background(), protocol.RadioData{}))
	})

	t.Run("Cancelled Context", func(t *testing.T) {
		server, _ := newServer(t, http.StatusOK)
		client := NewClient(ClientConfig{RadioURL: server.URL})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Error(t, client.UploadLiveState(ctx, protocol.RadioData{}))
	})
}

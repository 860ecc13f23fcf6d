package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/protocol"
	"github.com/dougsko/rigsync/pkg/rig"
	"github.com/dougsko/rigsync/pkg/storage"
	"github.com/dougsko/rigsync/pkg/wsjtx"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopUploader struct {
	mu       sync.Mutex
	contacts []string
}

func (u *nopUploader) UploadLiveState(ctx context.Context, data protocol.RadioData) error {
	return nil
}

func (u *nopUploader) UploadContactRecord(ctx context.Context, adif string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.contacts = append(u.contacts, adif)
	return nil
}

func createTestConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Flrig.Personality = config.PersonalityGeneric
	cfg.Wavelog.Key = "secret"
	cfg.Wavelog.Identifier = "FT-991A"
	cfg.Wavelog.Interval = 1000
	cfg.CAT.Host = "127.0.0.1"
	cfg.CAT.Port = 54321
	return cfg
}

func newTestDaemon(t *testing.T, cfg *config.Config) (*Daemon, *rig.MockRig) {
	r := rig.NewMockRig()
	d, err := newDaemon(cfg, r, &nopUploader{})
	require.NoError(t, err)
	t.Cleanup(func() {
		if d.store != nil {
			d.store.Close()
		}
	})
	return d, r
}

func serve(d *Daemon, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	d.router.ServeHTTP(w, req)
	return w
}

func TestQSYHandler(t *testing.T) {
	t.Run("GET Success", func(t *testing.T) {
		d, r := newTestDaemon(t, createTestConfig(t))

		w := serve(d, http.MethodGet, "/14030000/cw")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok","connected":true,"frequency":14030000,"mode":"CW","rig":"FT-991A"}`, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

		freq, err := r.GetFrequency()
		require.NoError(t, err)
		assert.Equal(t, 14030000.0, freq)
	})

	t.Run("POST Success", func(t *testing.T) {
		d, _ := newTestDaemon(t, createTestConfig(t))
		w := serve(d, http.MethodPost, "/7074000/phone")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"mode":"D-USB"`)
	})

	t.Run("OPTIONS Preflight", func(t *testing.T) {
		d, r := newTestDaemon(t, createTestConfig(t))
		w := serve(d, http.MethodOptions, "/14030000/cw")
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "GET, POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, r.Journal())
	})

	t.Run("Other Methods", func(t *testing.T) {
		d, _ := newTestDaemon(t, createTestConfig(t))
		for _, method := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
			w := serve(d, method, "/14030000/cw")
			assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		}
	})

	t.Run("Bad Requests", func(t *testing.T) {
		d, r := newTestDaemon(t, createTestConfig(t))
		cases := map[string]string{
			"/":              "expected /<freq>/<mode>",
			"/abc/cw":        "frequency must be a positive integer",
			"/14030000/ft8":  "invalid mode",
			"/14030000/cw/x": "expected /<freq>/<mode>",
		}
		for path, reason := range cases {
			w := serve(d, http.MethodGet, path)
			assert.Equal(t, http.StatusBadRequest, w.Code, path)
			assert.Equal(t, reason, w.Body.String(), path)
		}
		assert.Empty(t, r.Journal())
	})

	t.Run("Rig Errors", func(t *testing.T) {
		d, r := newTestDaemon(t, createTestConfig(t))
		r.FailOn(rig.MethodSetVFO, errors.New("connection refused"))

		w := serve(d, http.MethodGet, "/14030000/cw")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "Failed to set frequency: "), w.Body.String())

		r.FailOn(rig.MethodSetVFO, nil)
		r.FailOn(rig.MethodSetMode, errors.New("busy"))
		w = serve(d, http.MethodGet, "/14030000/cw")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.True(t, strings.HasPrefix(w.Body.String(), "Failed to set mode: "), w.Body.String())
	})
}

func TestStatusHandler(t *testing.T) {
	d, _ := newTestDaemon(t, createTestConfig(t))
	serve(d, http.MethodGet, "/14030000/cw")

	w := serve(d, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status protocol.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, Version, status.Version)
	assert.Equal(t, "FT-991A", status.Rig)
	assert.Equal(t, uint64(1), status.Counters.QSYs)
}

func TestContactsHandler(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		d, _ := newTestDaemon(t, createTestConfig(t))
		w := serve(d, http.MethodGet, "/api/v1/contacts")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Lists Journal", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Enabled = true
		cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "contacts.db")
		cfg.Storage.MaxContacts = 100
		d, _ := newTestDaemon(t, cfg)

		for _, call := range []string{"K1ABC", "W1AW"} {
			buf, err := wsjtx.Encode(&wsjtx.LoggedADIF{ID: "WSJT-X", ADIF: "<call:" + strconv.Itoa(len(call)) + ">" + call + " <eor>"})
			require.NoError(t, err)
			require.NoError(t, d.gateway.HandleDatagram(context.Background(), buf, nil))
		}

		w := serve(d, http.MethodGet, "/api/v1/contacts?limit=1")
		require.Equal(t, http.StatusOK, w.Code)
		var contacts []storage.Contact
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
		require.Len(t, contacts, 1)
		assert.Equal(t, "W1AW", contacts[0].Callsign)

		w = serve(d, http.MethodGet, "/api/v1/contacts?limit=zero")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Filters And Stats", func(t *testing.T) {
		cfg := createTestConfig(t)
		cfg.Storage.Enabled = true
		cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "contacts.db")
		r := rig.NewMockRig()
		up := &failingUploader{fail: map[string]bool{"<call:4>W1AW <eor>": true}}
		d, err := newDaemon(cfg, r, up)
		require.NoError(t, err)
		defer d.store.Close()

		for _, adif := range []string{"<call:5>K1ABC <eor>", "<call:4>W1AW <eor>", "<call:5>K2XYZ <eor>"} {
			buf, err := wsjtx.Encode(&wsjtx.LoggedADIF{ID: "WSJT-X", ADIF: adif})
			require.NoError(t, err)
			d.gateway.HandleDatagram(context.Background(), buf, nil)
		}

		list := func(query string) []storage.Contact {
			w := serve(d, http.MethodGet, "/api/v1/contacts"+query)
			require.Equal(t, http.StatusOK, w.Code, query)
			var contacts []storage.Contact
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
			return contacts
		}

		failed := list("?failed=true")
		require.Len(t, failed, 1)
		assert.Equal(t, "W1AW", failed[0].Callsign)

		byCall := list("?call=k1abc")
		require.Len(t, byCall, 1)
		assert.Equal(t, "K1ABC", byCall[0].Callsign)

		paged := list("?limit=1&offset=1")
		require.Len(t, paged, 1)
		assert.Equal(t, "W1AW", paged[0].Callsign)

		assert.Empty(t, list("?since=2999-01-01T00:00:00Z"))
		assert.Len(t, list("?since=2000-01-01T00:00:00Z"), 3)

		for _, bad := range []string{"?offset=-1", "?failed=maybe", "?since=yesterday"} {
			w := serve(d, http.MethodGet, "/api/v1/contacts"+bad)
			assert.Equal(t, http.StatusBadRequest, w.Code, bad)
		}

		w := serve(d, http.MethodGet, "/api/v1/contacts/stats")
		require.Equal(t, http.StatusOK, w.Code)
		var stats storage.JournalStats
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.Equal(t, 3, stats.Stored)
		assert.Equal(t, 3, stats.TotalContacts)
		assert.Equal(t, 2, stats.TotalUploaded)
		assert.Equal(t, 1, stats.TotalFailed)
	})

	t.Run("Stats Disabled", func(t *testing.T) {
		d, _ := newTestDaemon(t, createTestConfig(t))
		w := serve(d, http.MethodGet, "/api/v1/contacts/stats")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

type failingUploader struct {
	nopUploader
	fail map[string]bool
}

func (u *failingUploader) UploadContactRecord(ctx context.Context, adif string) error {
	if u.fail[adif] {
		return errors.New("HTTP 502: bad gateway")
	}
	return u.nopUploader.UploadContactRecord(ctx, adif)
}

func TestEventsHandler(t *testing.T) {
	d, _ := newTestDaemon(t, createTestConfig(t))
	server := httptest.NewServer(d.router)
	defer server.Close()
	defer d.hub.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return d.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp, err := http.Get(server.URL + "/14030000/cw")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event protocol.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, protocol.EventQSY, event.Type)
	assert.NotEmpty(t, event.ID)
}

package client

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dougsko/rigsync/pkg/protocol"
	"github.com/dougsko/rigsync/pkg/storage"
	"github.com/dougsko/rigsync/pkg/wsjtx"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *GatewayClient {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGatewayClient(strings.TrimPrefix(server.URL, "http://"))
}

func TestGetStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/status", r.URL.Path)
		json.NewEncoder(w).Encode(protocol.Status{Version: "1.0.0", Rig: "FT-991A"})
	})

	status, err := c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "FT-991A", status.Rig)
}

func TestQSY(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/14030000/cw", r.URL.Path)
			json.NewEncoder(w).Encode(protocol.NewQSYResponse(14030000, "CW", "FT-991A"))
		})

		resp, err := c.QSY(14030000, "cw")
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "CW", resp.Mode)
	})

	t.Run("Rig Error", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "Failed to set frequency: down", http.StatusInternalServerError)
		})

		_, err := c.QSY(14030000, "cw")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Failed to set frequency: down")
	})
}

func TestGetContacts(t *testing.T) {
	t.Run("Limit Only", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/contacts", r.URL.Path)
			assert.Equal(t, "limit=5", r.URL.RawQuery)
			w.Write([]byte(`[{"id":1,"callsign":"K1ABC","uploaded":true}]`))
		})

		contacts, err := c.GetContacts(storage.ContactQuery{Limit: 5})
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, "K1ABC", contacts[0].Callsign)
	})

	t.Run("All Filters", func(t *testing.T) {
		since := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			assert.Equal(t, "10", q.Get("limit"))
			assert.Equal(t, "20", q.Get("offset"))
			assert.Equal(t, "W1AW", q.Get("call"))
			assert.Equal(t, "true", q.Get("failed"))
			assert.Equal(t, "2024-03-01T00:00:00Z", q.Get("since"))
			w.Write([]byte(`[]`))
		})

		contacts, err := c.GetContacts(storage.ContactQuery{
			Limit: 10, Offset: 20, Callsign: "W1AW", FailedOnly: true, Since: &since,
		})
		require.NoError(t, err)
		assert.Empty(t, contacts)
	})
}

func TestGetContactStats(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/contacts/stats", r.URL.Path)
		w.Write([]byte(`{"stored":3,"total_contacts":7,"total_uploaded":6,"total_failed":1}`))
	})

	stats, err := c.GetContactStats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Stored)
	assert.Equal(t, 1, stats.TotalFailed)
}

func TestSendLoggedADIF(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	adif := "<call:4>W1AW <eor>"
	require.NoError(t, SendLoggedADIF(conn.LocalAddr().String(), "rigsyncctl", adif))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, wsjtx.MaxDatagramSize)
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	msg, err := wsjtx.Decode(buf[:n])
	require.NoError(t, err)
	logged, ok := msg.(*wsjtx.LoggedADIF)
	require.True(t, ok)
	assert.Equal(t, "rigsyncctl", logged.ID)
	assert.Equal(t, adif, logged.ADIF)
}

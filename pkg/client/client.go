package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dougsko/rigsync/pkg/protocol"
	"github.com/dougsko/rigsync/pkg/storage"
	"github.com/dougsko/rigsync/pkg/wsjtx"
)

// GatewayClient talks to a running rigsync over its HTTP API
type GatewayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewGatewayClient creates a client for the gateway at addr ("host:port")
func NewGatewayClient(addr string) *GatewayClient {
	return &GatewayClient{
		baseURL:    "http://" + strings.TrimSuffix(addr, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// get fetches path and decodes the JSON body into out
func (c *GatewayClient) get(path string, out interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to connect to gateway: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	return nil
}

// GetStatus gets the current gateway status
func (c *GatewayClient) GetStatus() (*protocol.Status, error) {
	var status protocol.Status
	if err := c.get("/api/v1/status", &status); err != nil {
		return nil, fmt.Errorf("status error: %w", err)
	}
	return &status, nil
}

// GetContacts lists journalled contacts matching query, newest first
func (c *GatewayClient) GetContacts(query storage.ContactQuery) ([]storage.Contact, error) {
	params := url.Values{}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}
	if query.Offset > 0 {
		params.Set("offset", strconv.Itoa(query.Offset))
	}
	if query.Callsign != "" {
		params.Set("call", query.Callsign)
	}
	if query.FailedOnly {
		params.Set("failed", "true")
	}
	if query.Since != nil {
		params.Set("since", query.Since.UTC().Format(time.RFC3339))
	}

	path := "/api/v1/contacts"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var contacts []storage.Contact
	if err := c.get(path, &contacts); err != nil {
		return nil, fmt.Errorf("contacts error: %w", err)
	}
	return contacts, nil
}

// GetContactStats gets the journal totals
func (c *GatewayClient) GetContactStats() (*storage.JournalStats, error) {
	var stats storage.JournalStats
	if err := c.get("/api/v1/contacts/stats", &stats); err != nil {
		return nil, fmt.Errorf("contact stats error: %w", err)
	}
	return &stats, nil
}

// QSY asks the gateway to tune the rig, exactly as a bandmap click would
func (c *GatewayClient) QSY(freqHz uint64, mode string) (*protocol.QSYResponse, error) {
	var resp protocol.QSYResponse
	path := fmt.Sprintf("/%d/%s", freqHz, mode)
	if err := c.get(path, &resp); err != nil {
		return nil, fmt.Errorf("qsy error: %w", err)
	}
	return &resp, nil
}

// SendLoggedADIF broadcasts a logged-adif datagram to addr the way a
// digital-mode application does after a contact is logged
func SendLoggedADIF(addr, clientID, adif string) error {
	buf, err := wsjtx.Encode(&wsjtx.LoggedADIF{ID: clientID, ADIF: adif})
	if err != nil {
		return err
	}

	conn, err := net.DialTimeout("udp", addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := conn.Write(buf); err != nil {
		return fmt.Errorf("send error: %w", err)
	}
	return nil
}

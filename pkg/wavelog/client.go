// Package wavelog uploads rig state and logged contacts to a Wavelog or
// Cloudlog instance.
package wavelog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/protocol"
)

// DefaultTimeout bounds each upload when none is configured
const DefaultTimeout = 10 * time.Second

// Client posts JSON to the logging service's radio and QSO endpoints
type Client struct {
	radioURL         string
	qsoURL           string
	key              string
	stationProfileID int
	httpClient       *http.Client
}

// ClientConfig holds the endpoint settings for a Client
type ClientConfig struct {
	RadioURL         string
	QSOURL           string
	Key              string
	StationProfileID int
	Timeout          time.Duration
}

// contactRecord is the body accepted by the QSO endpoint
type contactRecord struct {
	Key              string `json:"key"`
	StationProfileID int    `json:"station_profile_id"`
	Type             string `json:"type"`
	String           string `json:"string"`
}

// NewClient creates a client from explicit settings
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		radioURL:         cfg.RadioURL,
		qsoURL:           cfg.QSOURL,
		key:              cfg.Key,
		stationProfileID: cfg.StationProfileID,
		httpClient:       &http.Client{Timeout: cfg.Timeout},
	}
}

// NewClientFromConfig creates a client from the wavelog section
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(ClientConfig{
		RadioURL:         cfg.Wavelog.URL,
		QSOURL:           cfg.Wavelog.QSOURL,
		Key:              cfg.Wavelog.Key,
		StationProfileID: cfg.Wavelog.StationProfileID,
		Timeout:          cfg.UploadTimeout(),
	})
}

// UploadLiveState pushes the current rig state
func (c *Client) UploadLiveState(ctx context.Context, data protocol.RadioData) error {
	if err := c.postJSON(ctx, c.radioURL, data); err != nil {
		return fmt.Errorf("live state upload failed: %w", err)
	}
	return nil
}

// UploadContactRecord submits one ADIF record to the logbook
func (c *Client) UploadContactRecord(ctx context.Context, adif string) error {
	if c.qsoURL == "" {
		return fmt.Errorf("contact upload failed: no qso_url configured")
	}

	record := contactRecord{
		Key:              c.key,
		StationProfileID: c.stationProfileID,
		Type:             "adif",
		String:           adif,
	}
	if err := c.postJSON(ctx, c.qsoURL, record); err != nil {
		return fmt.Errorf("contact upload failed: %w", err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, url string, body interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rigsync/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/dougsko/rigsync/pkg/engine"
	"github.com/dougsko/rigsync/pkg/logging"
	"github.com/dougsko/rigsync/pkg/protocol"
	"github.com/dougsko/rigsync/pkg/storage"
)

const defaultContactLimit = 50

// WebSocket upgrader
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboards are served from anywhere on the LAN
	},
}

// requestLogger logs every request through the component logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logging.Debug("http", "request", logging.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		})
	}
}

// setCORS allows the bandmap page to call us from any origin
func setCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
}

// handleQSY serves bandmap clicks: every path not claimed by the API is a
// /<freq>/<mode> request
func (d *Daemon) handleQSY(c *gin.Context) {
	setCORS(c)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodPost:
	default:
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	req, err := protocol.ParseQSYPath(c.Request.URL.Path)
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}

	mode, err := d.gateway.QSY(*req)
	if err != nil {
		var step *engine.StepError
		if errors.As(err, &step) {
			c.String(http.StatusInternalServerError, "Failed to set %s: %v", step.Step, step.Err)
			return
		}
		c.String(http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, protocol.NewQSYResponse(req.Frequency, mode.String(), d.gateway.Identifier()))
}

// handleGetStatus returns the gateway status
func (d *Daemon) handleGetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, d.gateway.Status())
}

// handleGetContacts lists journalled contacts, newest first. Filters:
// limit, offset, call, failed, since (RFC 3339).
func (d *Daemon) handleGetContacts(c *gin.Context) {
	if d.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact journal is disabled"})
		return
	}

	query, err := parseContactQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contacts, err := d.store.GetContacts(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get contacts: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, contacts)
}

func parseContactQuery(c *gin.Context) (storage.ContactQuery, error) {
	query := storage.ContactQuery{
		Limit:    defaultContactLimit,
		Callsign: c.Query("call"),
	}

	if l := c.Query("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			return query, errors.New("limit must be a positive integer")
		}
		query.Limit = n
	}

	if o := c.Query("offset"); o != "" {
		n, err := strconv.Atoi(o)
		if err != nil || n < 0 {
			return query, errors.New("offset must be a non-negative integer")
		}
		query.Offset = n
	}

	if f := c.Query("failed"); f != "" {
		failed, err := strconv.ParseBool(f)
		if err != nil {
			return query, errors.New("failed must be true or false")
		}
		query.FailedOnly = failed
	}

	if since := c.Query("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return query, errors.New("since must be an RFC 3339 timestamp")
		}
		query.Since = &t
	}

	return query, nil
}

// handleGetContactStats returns the journal totals
func (d *Daemon) handleGetContactStats(c *gin.Context) {
	if d.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact journal is disabled"})
		return
	}

	stats, err := d.store.GetStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get contact stats: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// handleEvents streams gateway events over a websocket
func (d *Daemon) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn("events", "websocket upgrade failed", logging.Fields{"error": err.Error()})
		return
	}
	d.hub.Serve(conn)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/engine"
	"github.com/dougsko/rigsync/pkg/logging"
	"github.com/dougsko/rigsync/pkg/rig"
	"github.com/dougsko/rigsync/pkg/storage"
	"github.com/dougsko/rigsync/pkg/wavelog"
	"github.com/dougsko/rigsync/pkg/wsjtx"
)

// Daemon runs the poller, the broadcast listener and the HTTP server
type Daemon struct {
	config *config.Config
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Core components
	rig       rig.Controller
	gateway   *engine.Gateway
	store     *storage.ContactStore
	hub       *EventHub
	listener  *wsjtx.Listener
	router    *gin.Engine
	webServer *http.Server
}

// NewDaemon creates a daemon wired to flrig and Wavelog
func NewDaemon(cfg *config.Config) (*Daemon, error) {
	controller, err := rig.New(cfg)
	if err != nil {
		return nil, err
	}
	return newDaemon(cfg, controller, wavelog.NewClientFromConfig(cfg))
}

func newDaemon(cfg *config.Config, controller rig.Controller, uploader engine.Uploader) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:  cfg,
		ctx:     ctx,
		cancel:  cancel,
		rig:     controller,
		gateway: engine.NewGateway(cfg, controller, uploader),
		hub:     NewEventHub(),
	}
	d.gateway.SetVersion(Version)
	d.gateway.SetEventSink(d.hub)

	if cfg.Storage.Enabled {
		store, err := storage.NewContactStore(cfg.Storage.DatabasePath, cfg.Storage.MaxContacts)
		if err != nil {
			cancel()
			return nil, err
		}
		d.store = store
		d.gateway.SetJournal(store)
	}

	d.setupWebServer()
	return d, nil
}

// setupWebServer initializes the router. Anything not under /api/v1 is a QSY.
func (d *Daemon) setupWebServer() {
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.GET("/status", d.handleGetStatus)
		api.GET("/contacts", d.handleGetContacts)
		api.GET("/contacts/stats", d.handleGetContactStats)
		api.GET("/events", d.handleEvents)
	}
	router.NoRoute(d.handleQSY)

	d.router = router
	d.webServer = &http.Server{
		Addr:              d.config.CATAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start binds the sockets and launches the background loops
func (d *Daemon) Start() error {
	logging.Info("daemon", "starting")

	ln, err := net.Listen("tcp", d.webServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.webServer.Addr, err)
	}

	if d.config.WSJTXEnabled() {
		listener, err := wsjtx.Listen(d.config.WSJTXAddress(), d.gateway, d.config.ErrTimeout())
		if err != nil {
			ln.Close()
			return err
		}
		d.listener = listener

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			if err := d.listener.Serve(d.ctx); err != nil {
				logging.Error("wsjtx", "listener stopped", logging.Fields{"error": err.Error()})
			}
		}()
	} else {
		logging.Info("daemon", "wsjtx forwarding disabled")
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.gateway.RunPoller(d.ctx)
	}()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		logging.Info("http", "QSY server listening", logging.Fields{"addr": ln.Addr().String()})
		if err := d.webServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("http", "server error", logging.Fields{"error": err.Error()})
		}
	}()

	return nil
}

// Stop stops the daemon gracefully
func (d *Daemon) Stop() error {
	logging.Info("daemon", "stopping")

	d.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.webServer.Shutdown(ctx); err != nil {
		logging.Warn("http", "shutdown error", logging.Fields{"error": err.Error()})
	}
	d.hub.Close()

	if d.listener != nil {
		d.listener.Close()
	}

	d.wg.Wait()

	if d.store != nil {
		if err := d.store.Close(); err != nil {
			logging.Warn("storage", "close error", logging.Fields{"error": err.Error()})
		}
	}
	if err := d.rig.Close(); err != nil {
		logging.Warn("rig", "close error", logging.Fields{"error": err.Error()})
	}

	logging.Info("daemon", "stopped")
	return nil
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/logging"
	"github.com/dougsko/rigsync/pkg/protocol"
	"github.com/dougsko/rigsync/pkg/rig"
	"github.com/dougsko/rigsync/pkg/rigmode"
	"github.com/dougsko/rigsync/pkg/storage"
	"github.com/dougsko/rigsync/pkg/wsjtx"
)

// Uploader delivers state and contacts to the logging service
type Uploader interface {
	UploadLiveState(ctx context.Context, data protocol.RadioData) error
	UploadContactRecord(ctx context.Context, adif string) error
}

// EventSink receives gateway events for local subscribers
type EventSink interface {
	Publish(event protocol.Event)
}

// Journal stores forwarded contacts
type Journal interface {
	Record(c storage.Contact) (int64, error)
}

type discardSink struct{}

func (discardSink) Publish(protocol.Event) {}

// Gateway ties the rig, the logging service and the broadcast listener
// together. The poller, the HTTP handlers and the UDP listener run
// concurrently and share only the counters and the last snapshot.
type Gateway struct {
	config    *config.Config
	rig       rig.Controller
	uploader  Uploader
	guard     rigmode.Guard
	events    EventSink
	journal   Journal
	version   string
	startTime time.Time

	snapMutex sync.RWMutex
	prev      protocol.RigSnapshot
	last      *protocol.RigSnapshot
	lastPoll  time.Time

	stats stats
}

// NewGateway creates a gateway for an already connected rig
func NewGateway(cfg *config.Config, controller rig.Controller, uploader Uploader) *Gateway {
	return &Gateway{
		config:    cfg,
		rig:       controller,
		uploader:  uploader,
		guard:     rigmode.Guard{FilterBandwidth: cfg.Flrig.CWBandwidth},
		events:    discardSink{},
		version:   "dev",
		startTime: time.Now(),
		prev:      protocol.InitialSnapshot(),
	}
}

// SetEventSink routes events to sink
func (g *Gateway) SetEventSink(sink EventSink) {
	if sink == nil {
		sink = discardSink{}
	}
	g.events = sink
}

// SetJournal enables the contact journal
func (g *Gateway) SetJournal(journal Journal) {
	g.journal = journal
}

// SetVersion sets the version reported by Status
func (g *Gateway) SetVersion(version string) {
	g.version = version
}

// Poll reads the rig once and pushes the state when it changed. The
// snapshot becomes the comparison baseline before the push, so a failed push
// is not retried until the rig changes again.
func (g *Gateway) Poll(ctx context.Context) error {
	cur, err := g.readSnapshot()
	if err != nil {
		g.stats.pollFailures.Add(1)
		return fmt.Errorf("rig poll failed: %w", err)
	}
	g.stats.polls.Add(1)

	g.snapMutex.Lock()
	prev := g.prev
	g.prev = cur
	last := cur
	g.last = &last
	g.lastPoll = time.Now()
	g.snapMutex.Unlock()

	if !protocol.Changed(prev, cur) {
		return nil
	}

	g.events.Publish(protocol.NewEvent(protocol.EventRig, cur))

	data := cur.RadioData(g.config.Wavelog.Key, g.config.Wavelog.Identifier)
	if err := g.uploader.UploadLiveState(ctx, data); err != nil {
		g.stats.pushFailures.Add(1)
		return err
	}
	g.stats.pushes.Add(1)

	logging.Info("poller", "rig state pushed", logging.Fields{
		"freq":  data.Frequency,
		"mode":  data.Mode,
		"power": data.Power,
	})
	return nil
}

func (g *Gateway) readSnapshot() (protocol.RigSnapshot, error) {
	freq, err := g.rig.GetFrequency()
	if err != nil {
		return protocol.RigSnapshot{}, err
	}
	mode, err := g.rig.GetMode()
	if err != nil {
		return protocol.RigSnapshot{}, err
	}
	power, err := g.rig.GetPower()
	if err != nil {
		return protocol.RigSnapshot{}, err
	}

	if g.config.Flrig.PowerPercent {
		max, err := g.rig.GetMaxPower()
		if err != nil {
			return protocol.RigSnapshot{}, err
		}
		power = power * max / 100
	}

	return protocol.RigSnapshot{
		Frequency: freq,
		Mode:      mode,
		Power:     strconv.Itoa(power),
	}, nil
}

// RunPoller polls until ctx is cancelled. The interval is measured from the
// end of one tick to the start of the next so ticks never overlap.
func (g *Gateway) RunPoller(ctx context.Context) {
	interval := g.config.PollInterval()
	logging.Info("poller", "starting", logging.Fields{"interval": interval.String()})

	for {
		if err := g.Poll(ctx); err != nil && ctx.Err() == nil {
			logging.Warn("poller", "tick skipped", logging.Fields{"error": err.Error()})
		}

		select {
		case <-ctx.Done():
			logging.Info("poller", "stopped")
			return
		case <-time.After(interval):
		}
	}
}

// QSY tunes the rig for a bandmap click and returns the mode that was
// selected. The frequency is written first because the band plan decision
// depends on where the rig ends up.
func (g *Gateway) QSY(req protocol.QSYRequest) (rigmode.Mode, error) {
	target := rigmode.Translate(req.Frequency, req.Mode, g.config.VendorQualified())

	if err := g.qsy(req.Frequency, target); err != nil {
		g.stats.qsyFailures.Add(1)
		logging.Error("qsy", "failed", logging.Fields{
			"freq":  req.Frequency,
			"mode":  target.String(),
			"error": err.Error(),
		})
		return target, err
	}
	g.stats.qsys.Add(1)

	logging.Info("qsy", "rig tuned", logging.Fields{
		"freq":   req.Frequency,
		"coarse": req.Mode.String(),
		"mode":   target.String(),
	})
	g.events.Publish(protocol.NewEvent(protocol.EventQSY, protocol.NewQSYResponse(req.Frequency, target.String(), g.config.Wavelog.Identifier)))
	return target, nil
}

func (g *Gateway) qsy(freq float64, target rigmode.Mode) error {
	if err := g.rig.SetFrequency(freq); err != nil {
		return &StepError{Step: StepFrequency, Err: err}
	}

	// Always ask the rig; the operator may have changed the mode by hand.
	reported, err := g.rig.GetMode()
	if err != nil {
		return &StepError{Step: StepMode, Err: err}
	}

	plan, err := g.guard.Plan(target, reported)
	if err != nil {
		var unknown *rigmode.UnknownModeError
		if !errors.As(err, &unknown) {
			return &StepError{Step: StepMode, Err: err}
		}
		logging.Warn("qsy", "rig reported an unknown mode, writing anyway", logging.Fields{"reported": unknown.Raw})
		plan = g.guard.WritePlan(target)
	}

	if !plan.Write {
		logging.Debug("qsy", "mode already active", logging.Fields{"mode": target.String()})
		return nil
	}

	if err := g.rig.SetMode(plan.Mode.String()); err != nil {
		return &StepError{Step: StepMode, Err: err}
	}

	if plan.FilterBandwidth > 0 {
		if err := g.rig.SetFilterBandwidth(plan.FilterBandwidth); err != nil {
			return &StepError{Step: StepFilterBandwidth, Err: err}
		}
	}
	return nil
}

// HandleDatagram decodes one broadcast datagram and forwards logged
// contacts. Other message types are only logged.
func (g *Gateway) HandleDatagram(ctx context.Context, buf []byte, src net.Addr) error {
	g.stats.datagrams.Add(1)

	msg, err := wsjtx.Decode(buf)
	if err != nil {
		g.stats.decodeErrors.Add(1)
		return fmt.Errorf("datagram from %v: %w", src, err)
	}

	logged, ok := msg.(*wsjtx.LoggedADIF)
	if !ok {
		logging.Debug("wsjtx", "message ignored", logging.Fields{
			"type": msg.Kind().String(),
			"id":   msg.ClientID(),
		})
		return nil
	}

	return g.forwardContact(ctx, logged)
}

func (g *Gateway) forwardContact(ctx context.Context, logged *wsjtx.LoggedADIF) error {
	uploadErr := g.uploader.UploadContactRecord(ctx, logged.ADIF)
	contact := storage.NewContact(logged.ID, logged.ADIF, uploadErr)

	if g.journal != nil {
		id, err := g.journal.Record(contact)
		if err != nil {
			logging.Error("storage", "failed to journal contact", logging.Fields{"error": err.Error()})
		} else {
			contact.ID = id
		}
	}
	g.events.Publish(protocol.NewEvent(protocol.EventContact, contact))

	if uploadErr != nil {
		g.stats.contactFailures.Add(1)
		return fmt.Errorf("contact %s from %s not uploaded: %w", contact.Callsign, logged.ID, uploadErr)
	}
	g.stats.contacts.Add(1)

	logging.Info("wsjtx", "contact uploaded", logging.Fields{
		"call":   contact.Callsign,
		"band":   contact.Band,
		"mode":   contact.Mode,
		"client": logged.ID,
	})
	return nil
}

// Status reports the gateway's identity, last snapshot and counters
func (g *Gateway) Status() *protocol.Status {
	status := &protocol.Status{
		Version:     g.version,
		Rig:         g.config.Wavelog.Identifier,
		Personality: g.config.Flrig.Personality,
		Uptime:      time.Since(g.startTime).Truncate(time.Second).String(),
		StartTime:   g.startTime,
		Counters:    g.stats.snapshot(),
	}

	g.snapMutex.RLock()
	if g.last != nil {
		snap := *g.last
		status.Snapshot = &snap
	}
	status.LastPoll = g.lastPoll
	g.snapMutex.RUnlock()

	return status
}

// Identifier is the rig name reported to clients
func (g *Gateway) Identifier() string {
	return g.config.Wavelog.Identifier
}

// Package rig talks to the transceiver control daemon.
package rig

import (
	"github.com/dougsko/rigsync/pkg/config"
	"github.com/dougsko/rigsync/pkg/logging"
)

// Controller defines the rig operations the gateway needs
type Controller interface {
	// Frequency control
	GetFrequency() (float64, error)
	SetFrequency(freq float64) error

	// Mode control. Labels are the daemon's own mode names.
	GetMode() (string, error)
	SetMode(mode string) error
	SetFilterBandwidth(hz int) error

	// Power
	GetPower() (int, error)
	GetMaxPower() (int, error)

	Close() error
}

// XML-RPC method names exposed by flrig
const (
	MethodGetVFO    = "rig.get_vfo"
	MethodGetMode   = "rig.get_mode"
	MethodGetPower  = "rig.get_power"
	MethodGetMaxPwr = "rig.get_maxpwr"
	MethodSetVFO    = "rig.set_vfo"
	MethodSetMode   = "rig.set_mode"
	MethodSetBW     = "rig.set_bw"
)

// New creates the controller selected by configuration
func New(cfg *config.Config) (Controller, error) {
	if cfg.Flrig.Mock {
		logging.Warn("rig", "using mock rig, no transceiver will be controlled")
		return NewMockRig(), nil
	}
	return NewFLRig(cfg.FlrigURL())
}

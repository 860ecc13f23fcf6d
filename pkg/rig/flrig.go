package rig

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kolo/xmlrpc"

	"github.com/dougsko/rigsync/pkg/logging"
)

// FLRig controls a rig through flrig's XML-RPC interface
type FLRig struct {
	url    string
	client *xmlrpc.Client
	mutex  sync.Mutex
}

// NewFLRig creates a client for the flrig server at url
func NewFLRig(url string) (*FLRig, error) {
	client, err := xmlrpc.NewClient(url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create flrig client: %w", err)
	}

	logging.Info("rig", "using flrig", logging.Fields{"url": url})
	return &FLRig{url: url, client: client}, nil
}

// call serializes requests so a QSY never interleaves with a poll
func (r *FLRig) call(method string, args interface{}, reply interface{}) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.client.Call(method, args, reply); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GetFrequency returns the VFO frequency in Hz
func (r *FLRig) GetFrequency() (float64, error) {
	var reply string
	if err := r.call(MethodGetVFO, nil, &reply); err != nil {
		return 0, err
	}

	freq, err := strconv.ParseFloat(strings.TrimSpace(reply), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid frequency %q", MethodGetVFO, reply)
	}
	return freq, nil
}

// SetFrequency tunes the VFO
func (r *FLRig) SetFrequency(freq float64) error {
	var ignored interface{}
	return r.call(MethodSetVFO, freq, &ignored)
}

// GetMode returns the rig's mode label
func (r *FLRig) GetMode() (string, error) {
	var mode string
	if err := r.call(MethodGetMode, nil, &mode); err != nil {
		return "", err
	}
	return mode, nil
}

// SetMode selects a mode by label
func (r *FLRig) SetMode(mode string) error {
	var ignored interface{}
	return r.call(MethodSetMode, mode, &ignored)
}

// SetFilterBandwidth sets the receive filter width in Hz
func (r *FLRig) SetFilterBandwidth(hz int) error {
	var ignored interface{}
	return r.call(MethodSetBW, hz, &ignored)
}

// GetPower returns the power setting as reported by flrig
func (r *FLRig) GetPower() (int, error) {
	var power int
	if err := r.call(MethodGetPower, nil, &power); err != nil {
		return 0, err
	}
	return power, nil
}

// GetMaxPower returns the rig's maximum power in watts
func (r *FLRig) GetMaxPower() (int, error) {
	var power int
	if err := r.call(MethodGetMaxPwr, nil, &power); err != nil {
		return 0, err
	}
	return power, nil
}

// Close releases the HTTP client
func (r *FLRig) Close() error {
	return r.client.Close()
}

package rig

import (
	"fmt"
	"sync"

	"github.com/dougsko/rigsync/pkg/logging"
)

// Command is one call recorded by MockRig
type Command struct {
	Method string
	Value  interface{}
}

// MockRig implements Controller in memory for testing and dry runs
type MockRig struct {
	mutex sync.RWMutex

	// Mock state
	connected bool
	frequency float64
	mode      string
	bandwidth int
	power     int
	maxPower  int

	journal  []Command
	failures map[string]error
}

// NewMockRig creates a connected mock rig parked on 20m FT8
func NewMockRig() *MockRig {
	return &MockRig{
		connected: true,
		frequency: 14074000,
		mode:      "USB",
		power:     50,
		maxPower:  100,
		failures:  make(map[string]error),
	}
}

// SetState overrides the reported rig state without recording a command
func (r *MockRig) SetState(freq float64, mode string, power int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.frequency = freq
	r.mode = mode
	r.power = power
}

// SetMaxPower overrides the reported maximum power
func (r *MockRig) SetMaxPower(watts int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.maxPower = watts
}

// FailOn makes every later call of method return err. A nil err clears it.
func (r *MockRig) FailOn(method string, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err == nil {
		delete(r.failures, method)
		return
	}
	r.failures[method] = err
}

// Journal returns the calls made so far, reads included
func (r *MockRig) Journal() []Command {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]Command(nil), r.journal...)
}

// Writes returns only the set_* calls
func (r *MockRig) Writes() []Command {
	var writes []Command
	for _, c := range r.Journal() {
		switch c.Method {
		case MethodSetVFO, MethodSetMode, MethodSetBW:
			writes = append(writes, c)
		}
	}
	return writes
}

// ResetJournal forgets recorded calls
func (r *MockRig) ResetJournal() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.journal = nil
}

// Bandwidth returns the last filter bandwidth written
func (r *MockRig) Bandwidth() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.bandwidth
}

// record must be called with the write lock held
func (r *MockRig) record(method string, value interface{}) error {
	r.journal = append(r.journal, Command{Method: method, Value: value})
	if !r.connected {
		return fmt.Errorf("%s: rig not connected", method)
	}
	if err := r.failures[method]; err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// GetFrequency gets the mock rig frequency
func (r *MockRig) GetFrequency() (float64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodGetVFO, nil); err != nil {
		return 0, err
	}
	return r.frequency, nil
}

// SetFrequency sets the mock rig frequency
func (r *MockRig) SetFrequency(freq float64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodSetVFO, freq); err != nil {
		return err
	}
	logging.Debug("rig", "mock frequency set", logging.Fields{"freq": freq})
	r.frequency = freq
	return nil
}

// GetMode gets the mock rig mode
func (r *MockRig) GetMode() (string, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodGetMode, nil); err != nil {
		return "", err
	}
	return r.mode, nil
}

// SetMode sets the mock rig mode
func (r *MockRig) SetMode(mode string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodSetMode, mode); err != nil {
		return err
	}
	logging.Debug("rig", "mock mode set", logging.Fields{"mode": mode})
	r.mode = mode
	return nil
}

// SetFilterBandwidth sets the mock filter bandwidth
func (r *MockRig) SetFilterBandwidth(hz int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodSetBW, hz); err != nil {
		return err
	}
	r.bandwidth = hz
	return nil
}

// GetPower gets the mock power setting
func (r *MockRig) GetPower() (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodGetPower, nil); err != nil {
		return 0, err
	}
	return r.power, nil
}

// GetMaxPower gets the mock maximum power
func (r *MockRig) GetMaxPower() (int, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if err := r.record(MethodGetMaxPwr, nil); err != nil {
		return 0, err
	}
	return r.maxPower, nil
}

// Close disconnects the mock rig
func (r *MockRig) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.connected = false
	return nil
}

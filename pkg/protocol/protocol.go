package protocol

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RadioData is the live rig state pushed to the Wavelog radio API
type RadioData struct {
	Key       string `json:"key"`
	Radio     string `json:"radio"`
	Frequency string `json:"frequency"`
	Mode      string `json:"mode"`
	Power     string `json:"power"`
}

// QSYResponse is returned to the bandmap after a successful QSY
type QSYResponse struct {
	Status    string  `json:"status"`
	Connected bool    `json:"connected"`
	Frequency float64 `json:"frequency"`
	Mode      string  `json:"mode"`
	Rig       string  `json:"rig"`
}

// NewQSYResponse builds the success body for a QSY
func NewQSYResponse(freq float64, mode, rig string) *QSYResponse {
	return &QSYResponse{
		Status:    "ok",
		Connected: true,
		Frequency: freq,
		Mode:      mode,
		Rig:       rig,
	}
}

// Counters are the gateway activity totals since start
type Counters struct {
	Polls           uint64 `json:"polls"`
	PollFailures    uint64 `json:"poll_failures"`
	Pushes          uint64 `json:"pushes"`
	PushFailures    uint64 `json:"push_failures"`
	QSYs            uint64 `json:"qsys"`
	QSYFailures     uint64 `json:"qsy_failures"`
	Datagrams       uint64 `json:"datagrams"`
	DecodeErrors    uint64 `json:"decode_errors"`
	Contacts        uint64 `json:"contacts"`
	ContactFailures uint64 `json:"contact_failures"`
}

// Status represents the current gateway status
type Status struct {
	Version     string       `json:"version"`
	Rig         string       `json:"rig"`
	Personality string       `json:"personality"`
	Uptime      string       `json:"uptime"`
	StartTime   time.Time    `json:"start_time"`
	Snapshot    *RigSnapshot `json:"snapshot,omitempty"`
	LastPoll    time.Time    `json:"last_poll,omitempty"`
	Counters    Counters     `json:"counters"`
}

// Event types published on the event stream
const (
	EventRig     = "rig"
	EventQSY     = "qsy"
	EventContact = "contact"
)

// Event is one entry of the websocket event stream
type Event struct {
	ID   string      `json:"id"`
	Type string      `json:"type"`
	Time time.Time   `json:"time"`
	Data interface{} `json:"data"`
}

// NewEvent stamps an event with a fresh id and the current time
func NewEvent(eventType string, data interface{}) Event {
	return Event{
		ID:   uuid.NewString(),
		Type: eventType,
		Time: time.Now().UTC(),
		Data: data,
	}
}

// String converts an Event to a JSON string
func (e Event) String() string {
	data, _ := json.Marshal(e)
	return string(data)
}

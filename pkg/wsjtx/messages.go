// Package wsjtx implements the binary UDP broadcast protocol spoken by
// WSJT-X and JTDX (schema 2).
package wsjtx

import "fmt"

const (
	// Magic starts every datagram
	Magic uint32 = 0xADBCCBDA

	// Schema is the only schema number accepted
	Schema uint32 = 2

	// HeaderSize is magic, schema and message type
	HeaderSize = 12

	// MaxDatagramSize is the receive buffer size
	MaxDatagramSize = 1500

	nullStringLength uint32 = 0xFFFFFFFF
)

// Kind is the message type tag following the header
type Kind uint32

const (
	KindHeartbeat Kind = iota
	KindStatus
	KindDecode
	KindClear
	KindReply
	KindQSOLogged
	KindClose
	KindReplay
	KindHaltTx
	KindFreeText
	KindWSPRDecode
	KindLocation
	KindLoggedADIF
	KindHighlightCallsign
	KindSwitchConfiguration
	KindConfigure
)

var kindNames = [...]string{
	"heartbeat",
	"status",
	"decode",
	"clear",
	"reply",
	"qso-logged",
	"close",
	"replay",
	"halt-tx",
	"free-text",
	"wspr-decode",
	"location",
	"logged-adif",
	"highlight-callsign",
	"switch-configuration",
	"configure",
}

func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint32(k))
}

// Valid reports whether k is a known message type
func (k Kind) Valid() bool {
	return k <= KindConfigure
}

// Message is one decoded datagram. The set of implementations is closed:
// Heartbeat, Status, DecodeMessage, LoggedADIF and Opaque.
type Message interface {
	Kind() Kind
	ClientID() string
	message()
}

// Heartbeat is sent periodically by every client
type Heartbeat struct {
	ID        string
	MaxSchema uint32
	Version   string
	Revision  string
}

// Status reports the client's current operating state
type Status struct {
	ID           string
	DialFreq     uint64
	Mode         string
	DXCall       string
	Report       string
	TxMode       string
	TxEnabled    bool
	Transmitting bool
	Decoding     bool
	RxDF         uint32
	TxDF         uint32

	// Fields added by later client versions; zero when absent.
	DECall        string
	DEGrid        string
	DXGrid        string
	TxWatchdog    bool
	SubMode       string
	FastMode      bool
	SpecialOp     uint8
	FreqTolerance uint32
	TRPeriod      uint32
	ConfigName    string
	TxMessage     string
}

// DecodeMessage is one decoded signal
type DecodeMessage struct {
	ID            string
	New           bool
	Time          uint32 // milliseconds since midnight UTC
	SNR           int32
	DeltaTime     float64
	DeltaFreq     uint32
	Mode          string
	Text          string
	LowConfidence bool
	OffAir        bool
}

// LoggedADIF carries one logged contact as an ADIF record
type LoggedADIF struct {
	ID   string
	ADIF string
}

// Opaque is any other message type. Only the client id is decoded; the rest
// of the datagram is kept as is.
type Opaque struct {
	Type    Kind
	ID      string
	Payload []byte
}

func (m *Heartbeat) Kind() Kind { return KindHeartbeat }
func (m *Status) Kind() Kind { return KindStatus }
func (m *DecodeMessage) Kind() Kind { return KindDecode }
func (m *LoggedADIF) Kind() Kind { return KindLoggedADIF }
func (m *Opaque) Kind() Kind { return m.Type }

func (m *Heartbeat) ClientID() string { return m.ID }
func (m *Status) ClientID() string { return m.ID }
func (m *DecodeMessage) ClientID() string { return m.ID }
func (m *LoggedADIF) ClientID() string { return m.ID }
func (m *Opaque) ClientID() string { return m.ID }

func (*Heartbeat) message() {}
func (*Status) message() {}
func (*DecodeMessage) message() {}
func (*LoggedADIF) message() {}
func (*Opaque) message() {}

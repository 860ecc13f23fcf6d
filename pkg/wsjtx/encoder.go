package wsjtx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Encode serializes a message as a schema 2 datagram
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, fmt.Errorf("%w: nil message", ErrUnencodable)
	}

	w := &writer{}
	w.u32(Magic)
	w.u32(Schema)
	w.u32(uint32(msg.Kind()))

	switch m := msg.(type) {
	case *Heartbeat:
		w.utf8(m.ID)
		w.u32(m.MaxSchema)
		w.utf8(m.Version)
		w.utf8(m.Revision)
	case *Status:
		w.utf8(m.ID)
		w.u64(m.DialFreq)
		w.utf8(m.Mode)
		w.utf8(m.DXCall)
		w.utf8(m.Report)
		w.utf8(m.TxMode)
		w.bool(m.TxEnabled)
		w.bool(m.Transmitting)
		w.bool(m.Decoding)
		w.u32(m.RxDF)
		w.u32(m.TxDF)
		w.utf8(m.DECall)
		w.utf8(m.DEGrid)
		w.utf8(m.DXGrid)
		w.bool(m.TxWatchdog)
		w.utf8(m.SubMode)
		w.bool(m.FastMode)
		w.buf.WriteByte(m.SpecialOp)
		w.u32(m.FreqTolerance)
		w.u32(m.TRPeriod)
		w.utf8(m.ConfigName)
		w.utf8(m.TxMessage)
	case *DecodeMessage:
		w.utf8(m.ID)
		w.bool(m.New)
		w.u32(m.Time)
		w.u32(uint32(m.SNR))
		w.u64(math.Float64bits(m.DeltaTime))
		w.u32(m.DeltaFreq)
		w.utf8(m.Mode)
		w.utf8(m.Text)
		w.bool(m.LowConfidence)
		w.bool(m.OffAir)
	case *LoggedADIF:
		w.utf8(m.ID)
		w.utf8(m.ADIF)
	case *Opaque:
		if !m.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown message type %d", ErrUnencodable, uint32(m.Type))
		}
		if _, typed := decoders[m.Type]; typed {
			return nil, fmt.Errorf("%w: %s must not be sent as opaque", ErrUnencodable, m.Type)
		}
		w.utf8(m.ID)
		w.buf.Write(m.Payload)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnencodable, msg)
	}

	return w.buf.Bytes(), nil
}

type writer struct {
	buf bytes.Buffer
	tmp [8]byte
}

func (w *writer) u32(v uint32) {
	binary.BigEndian.PutUint32(w.tmp[:4], v)
	w.buf.Write(w.tmp[:4])
}

func (w *writer) u64(v uint64) {
	binary.BigEndian.PutUint64(w.tmp[:8], v)
	w.buf.Write(w.tmp[:8])
}

func (w *writer) bool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *writer) utf8(s string) {
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

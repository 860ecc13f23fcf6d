package wsjtx

import (
	"encoding/binary"
	"fmt"
	"math"
)

type decodeFunc func(r *reader) (Message, error)

var decoders = map[Kind]decodeFunc{
	KindHeartbeat:  decodeHeartbeat,
	KindStatus:     decodeStatus,
	KindDecode:     decodeDecode,
	KindLoggedADIF: decodeLoggedADIF,
}

// Decode parses one datagram
func Decode(buf []byte) (Message, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrDatagramTooShort, len(buf), HeaderSize)
	}

	if magic := binary.BigEndian.Uint32(buf[0:4]); magic != Magic {
		return nil, fmt.Errorf("%w: 0x%08X", ErrBadMagic, magic)
	}
	if schema := binary.BigEndian.Uint32(buf[4:8]); schema != Schema {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSchema, schema)
	}

	kind := Kind(binary.BigEndian.Uint32(buf[8:12]))
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown message type %d", ErrDeserialization, uint32(kind))
	}

	r := &reader{buf: buf[HeaderSize:], kind: kind}
	decode, ok := decoders[kind]
	if !ok {
		decode = decodeOpaque
	}
	return decode(r)
}

func decodeHeartbeat(r *reader) (Message, error) {
	m := &Heartbeat{
		ID:        r.utf8("id"),
		MaxSchema: r.u32("max schema"),
	}
	if r.more() {
		m.Version = r.utf8("version")
	}
	if r.more() {
		m.Revision = r.utf8("revision")
	}
	return r.finish(m)
}

func decodeStatus(r *reader) (Message, error) {
	m := &Status{
		ID:           r.utf8("id"),
		DialFreq:     r.u64("dial frequency"),
		Mode:         r.utf8("mode"),
		DXCall:       r.utf8("dx call"),
		Report:       r.utf8("report"),
		TxMode:       r.utf8("tx mode"),
		TxEnabled:    r.bool("tx enabled"),
		Transmitting: r.bool("transmitting"),
		Decoding:     r.bool("decoding"),
		RxDF:         r.u32("rx df"),
		TxDF:         r.u32("tx df"),
	}

	tail := []func(){
		func() { m.DECall = r.utf8("de call") },
		func() { m.DEGrid = r.utf8("de grid") },
		func() { m.DXGrid = r.utf8("dx grid") },
		func() { m.TxWatchdog = r.bool("tx watchdog") },
		func() { m.SubMode = r.utf8("sub-mode") },
		func() { m.FastMode = r.bool("fast mode") },
		func() { m.SpecialOp = r.u8("special operation mode") },
		func() { m.FreqTolerance = r.u32("frequency tolerance") },
		func() { m.TRPeriod = r.u32("tr period") },
		func() { m.ConfigName = r.utf8("configuration name") },
		func() { m.TxMessage = r.utf8("tx message") },
	}
	for _, field := range tail {
		if !r.more() {
			break
		}
		field()
	}
	return r.finish(m)
}

func decodeDecode(r *reader) (Message, error) {
	m := &DecodeMessage{
		ID:            r.utf8("id"),
		New:           r.bool("new"),
		Time:          r.u32("time"),
		SNR:           r.i32("snr"),
		DeltaTime:     r.f64("delta time"),
		DeltaFreq:     r.u32("delta frequency"),
		Mode:          r.utf8("mode"),
		Text:          r.utf8("message"),
		LowConfidence: r.bool("low confidence"),
	}
	if r.more() {
		m.OffAir = r.bool("off air")
	}
	return r.finish(m)
}

func decodeLoggedADIF(r *reader) (Message, error) {
	m := &LoggedADIF{
		ID:   r.utf8("id"),
		ADIF: r.utf8("adif"),
	}
	return r.finish(m)
}

func decodeOpaque(r *reader) (Message, error) {
	m := &Opaque{
		Type: r.kind,
		ID:   r.utf8("id"),
	}
	if r.err != nil {
		return nil, r.err
	}
	if rest := r.rest(); len(rest) > 0 {
		m.Payload = append([]byte(nil), rest...)
	}
	return m, nil
}

// finish drops a partially filled message once any read has failed
func (r *reader) finish(m Message) (Message, error) {
	if r.err != nil {
		return nil, r.err
	}
	return m, nil
}

// reader consumes big-endian fields. The first failure sticks and every
// later read returns a zero value.
type reader struct {
	buf  []byte
	off  int
	kind Kind
	err  error
}

func (r *reader) more() bool {
	return r.err == nil && r.off < len(r.buf)
}

func (r *reader) rest() []byte {
	return r.buf[r.off:]
}

func (r *reader) take(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = fmt.Errorf("%w: %s %s truncated", ErrDeserialization, r.kind, field)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) u8(field string) uint8 {
	b := r.take(1, field)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) bool(field string) bool {
	return r.u8(field) != 0
}

func (r *reader) u32(field string) uint32 {
	b := r.take(4, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) i32(field string) int32 {
	return int32(r.u32(field))
}

func (r *reader) u64(field string) uint64 {
	b := r.take(8, field)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func (r *reader) f64(field string) float64 {
	return math.Float64frombits(r.u64(field))
}

func (r *reader) utf8(field string) string {
	n := r.u32(field)
	if r.err != nil || n == nullStringLength {
		return ""
	}
	if uint64(n) > uint64(len(r.buf)-r.off) {
		r.err = fmt.Errorf("%w: %s %s truncated", ErrDeserialization, r.kind, field)
		return ""
	}
	return string(r.take(int(n), field))
}

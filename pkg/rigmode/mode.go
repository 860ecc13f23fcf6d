// Package rigmode holds the transceiver mode vocabulary and the heuristics
// that map bandmap requests onto it.
package rigmode

import "fmt"

// Mode is a canonical transceiver mode as flrig names it. Generic rigs and
// Yaesu rigs share the enumeration; the Yaesu entries are the sideband
// qualified labels those rigs use in place of CW, RTTY and D-USB.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeLSB
	ModeUSB
	ModeAM
	ModeFM
	ModeWFM
	ModeCW
	ModeCWR
	ModeRTTY
	ModeRTTYR
	ModeDLSB
	ModeDUSB
	ModeDAM
	ModeDFM

	// Yaesu
	ModeCWU
	ModeCWL
	ModeRTTYU
	ModeRTTYL
	ModeDataU
	ModeDataL
	ModeDataFM
	ModeDataFMN
	ModeFMN
	ModeAMN
	ModePSK
)

var modeLabels = map[Mode]string{
	ModeLSB:     "LSB",
	ModeUSB:     "USB",
	ModeAM:      "AM",
	ModeFM:      "FM",
	ModeWFM:     "WFM",
	ModeCW:      "CW",
	ModeCWR:     "CW-R",
	ModeRTTY:    "RTTY",
	ModeRTTYR:   "RTTY-R",
	ModeDLSB:    "D-LSB",
	ModeDUSB:    "D-USB",
	ModeDAM:     "D-AM",
	ModeDFM:     "D-FM",
	ModeCWU:     "CW-U",
	ModeCWL:     "CW-L",
	ModeRTTYU:   "RTTY-U",
	ModeRTTYL:   "RTTY-L",
	ModeDataU:   "DATA-U",
	ModeDataL:   "DATA-L",
	ModeDataFM:  "DATA-FM",
	ModeDataFMN: "DATA-FMN",
	ModeFMN:     "FM-N",
	ModeAMN:     "AM-N",
	ModePSK:     "PSK",
}

var modesByLabel = func() map[string]Mode {
	m := make(map[string]Mode, len(modeLabels))
	for mode, label := range modeLabels {
		m[label] = mode
	}
	return m
}()

// String returns the label flrig uses for the mode.
func (m Mode) String() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	if m == ModeUnknown {
		return "UNKNOWN"
	}
	return fmt.Sprintf("invalid mode: %d", int(m))
}

// IsCW reports whether m is one of the CW variants.
func (m Mode) IsCW() bool {
	switch m {
	case ModeCW, ModeCWR, ModeCWU, ModeCWL:
		return true
	}
	return false
}

// Modes returns every known mode.
func Modes() []Mode {
	modes := make([]Mode, 0, len(modeLabels))
	for m := ModeLSB; m <= ModePSK; m++ {
		modes = append(modes, m)
	}
	return modes
}

// ParseMode maps a label reported by flrig onto the enumeration. The match is
// exact; flrig labels are upper case.
func ParseMode(label string) (Mode, error) {
	if m, ok := modesByLabel[label]; ok {
		return m, nil
	}
	return ModeUnknown, &UnknownModeError{Raw: label}
}

// UnknownModeError is returned when the rig reports a mode label outside the
// enumeration.
type UnknownModeError struct {
	Raw string
}

func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown rig mode %q", e.Raw)
}

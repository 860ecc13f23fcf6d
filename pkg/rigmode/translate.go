package rigmode

import "fmt"

// CoarseMode is the mode hint sent by a Wavelog bandmap click.
type CoarseMode int

const (
	CoarseCW CoarseMode = iota
	CoarsePhone
	CoarseLSB
	CoarseUSB
	CoarseDigital
	CoarseRTTY
)

var coarseTokens = map[string]CoarseMode{
	"cw":    CoarseCW,
	"phone": CoarsePhone,
	"lsb":   CoarseLSB,
	"usb":   CoarseUSB,
	"digi":  CoarseDigital,
	"rtty":  CoarseRTTY,
}

// CoarseModes lists every coarse mode in declaration order.
var CoarseModes = []CoarseMode{CoarseCW, CoarsePhone, CoarseLSB, CoarseUSB, CoarseDigital, CoarseRTTY}

// String returns the URL token for the coarse mode.
func (c CoarseMode) String() string {
	for token, mode := range coarseTokens {
		if mode == c {
			return token
		}
	}
	return fmt.Sprintf("coarse(%d)", int(c))
}

// ParseCoarseMode accepts the lowercase URL tokens only.
func ParseCoarseMode(token string) (CoarseMode, bool) {
	c, ok := coarseTokens[token]
	return c, ok
}

const sidebandCrossover = 10_000_000.0

// Translate picks the rig mode for a bandmap request. Inside an FT8 window the
// coarse hint is ignored. Phone follows the LSB-below-10MHz convention; an
// explicit LSB or USB request is honoured as given.
func Translate(freqHz float64, coarse CoarseMode, vendorQualified bool) Mode {
	if IsActivityWindow(freqHz) {
		return pick(vendorQualified, ModeDUSB, ModeDataU)
	}

	switch coarse {
	case CoarseCW:
		return pick(vendorQualified, ModeCW, ModeCWU)
	case CoarsePhone:
		if freqHz < sidebandCrossover {
			return ModeLSB
		}
		return ModeUSB
	case CoarseLSB:
		return ModeLSB
	case CoarseUSB:
		return ModeUSB
	default:
		return pick(vendorQualified, ModeRTTY, ModeRTTYU)
	}
}

func pick(vendorQualified bool, generic, vendor Mode) Mode {
	if vendorQualified {
		return vendor
	}
	return generic
}

package rigmode

// FT8 dial frequencies, 160m through 6m.
var activityCenters = [...]float64{
	1_840_000,
	3_575_000,
	7_074_000,
	10_136_000,
	14_074_000,
	18_100_000,
	21_074_000,
	24_915_000,
	28_074_000,
	50_313_000,
}

const (
	windowBelow = 2_000.0
	windowAbove = 3_000.0
)

// IsActivityWindow reports whether freqHz lies in [center-2kHz, center+3kHz)
// around any FT8 dial frequency.
func IsActivityWindow(freqHz float64) bool {
	for _, center := range activityCenters {
		if freqHz >= center-windowBelow && freqHz < center+windowAbove {
			return true
		}
	}
	return false
}

package protocol

import "strconv"

// RigSnapshot is one poll of the rig
type RigSnapshot struct {
	Frequency float64 `json:"frequency"`
	Mode      string  `json:"mode"`
	Power     string  `json:"power"`
}

// InitialSnapshot is the "previous" state before the first poll. Any real
// rig reading differs from it, so the first poll always pushes.
func InitialSnapshot() RigSnapshot {
	return RigSnapshot{Power: "0"}
}

// Changed reports whether any field of cur differs from prev
func Changed(prev, cur RigSnapshot) bool {
	return prev.Frequency != cur.Frequency ||
		prev.Mode != cur.Mode ||
		prev.Power != cur.Power
}

// RadioData renders the snapshot for the Wavelog radio API
func (s RigSnapshot) RadioData(key, radio string) RadioData {
	return RadioData{
		Key:       key,
		Radio:     radio,
		Frequency: strconv.FormatFloat(s.Frequency, 'f', -1, 64),
		Mode:      s.Mode,
		Power:     s.Power,
	}
}

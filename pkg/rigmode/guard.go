package rigmode

// Plan is the outcome of a guard decision.
type Plan struct {
	Write           bool // false: target already active, send nothing
	Mode            Mode
	FilterBandwidth int // >0: set this bandwidth right after the mode write
}

// Guard suppresses mode writes that would not change the rig mode. On some
// rigs any set_mode briefly opens the receive filter, so a redundant write is
// audible.
type Guard struct {
	// FilterBandwidth is restored after switching into CW; 0 disables it.
	FilterBandwidth int
}

// Plan decides what to send to move the rig from its reported mode to target.
// The reported label must parse; an *UnknownModeError is returned otherwise
// and the caller chooses whether to write anyway.
func (g Guard) Plan(target Mode, reported string) (Plan, error) {
	current, err := ParseMode(reported)
	if err != nil {
		return Plan{}, err
	}
	return g.PlanFrom(target, current), nil
}

// PlanFrom is Plan for an already parsed current mode.
func (g Guard) PlanFrom(target, current Mode) Plan {
	if target == current {
		return Plan{Mode: target}
	}

	p := Plan{Write: true, Mode: target}
	if g.FilterBandwidth > 0 && target.IsCW() {
		p.FilterBandwidth = g.FilterBandwidth
	}
	return p
}

// WritePlan is the plan used when the current mode is unknown: always write.
func (g Guard) WritePlan(target Mode) Plan {
	return g.PlanFrom(target, ModeUnknown)
}

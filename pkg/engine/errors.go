package engine

import "fmt"

// QSY steps named in StepError
const (
	StepFrequency       = "frequency"
	StepMode            = "mode"
	StepFilterBandwidth = "filter bandwidth"
)

// StepError reports which rig write of a QSY failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("failed to set %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

package builder

import (
	"github.com/qobs-build/apmbuild/internal/msg"
)

// StageOutcome reports what an optional stage did.
type StageOutcome int

const (
	StageSkipped StageOutcome = iota
	StageRan
)

func (o StageOutcome) String() string {
	if o == StageRan {
		return "ran"
	}
	return "skipped"
}

// optionalStage runs only when its input file exists. A missing input is a
// skip, never an error.
type optionalStage struct {
	name  string
	input string
	run   func() error
}

func (s optionalStage) execute() (StageOutcome, error) {
	if !fileExists(s.input) {
		msg.Status("Skipping", "%s: %s not found", s.name, s.input)
		return StageSkipped, nil
	}
	if err := s.run(); err != nil {
		return StageSkipped, err
	}
	return StageRan, nil
}

package domain

import (
	"fmt"
	"time"
)

type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeAlreadyCompleted OutcomeKind = "already_completed"
	OutcomeUnauthorized     OutcomeKind = "unauthorized"
	OutcomeTransient        OutcomeKind = "transient_failure"
	OutcomeFatal            OutcomeKind = "fatal_failure"
)

func (k OutcomeKind) Label() string {
	switch k {
	case OutcomeSuccess:
		return "ok"
	case OutcomeAlreadyCompleted:
		return "cooldown"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeTransient:
		return "gateway timeout"
	case OutcomeFatal:
		return "failed"
	default:
		return string(k)
	}
}

// Outcome is the classified result of one remote action.
type Outcome struct {
	Kind       OutcomeKind
	StatusCode int
	Body       []byte
	// ResumeAt is set for AlreadyCompleted outcomes.
	ResumeAt time.Time
	Err      error
}

func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

func (o Outcome) String() string {
	switch {
	case o.Err != nil:
		return fmt.Sprintf("%s: %v", o.Kind, o.Err)
	case o.StatusCode != 0:
		return fmt.Sprintf("%s (status %d)", o.Kind, o.StatusCode)
	default:
		return string(o.Kind)
	}
}

package enums

import "fmt"

// StepStatus tracks one coordination step's state machine.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusInProgress StepStatus = "in_progress"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
)

var validStepStatuses = []StepStatus{
	StepStatusPending,
	StepStatusInProgress,
	StepStatusCompleted,
	StepStatusFailed,
}

// String implements fmt.Stringer.
func (s StepStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StepStatus.
func (s StepStatus) IsValid() bool {
	for _, candidate := range validStepStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo enforces pending→in_progress→{completed,failed} with
// failed→in_progress allowed for retries.
func (s StepStatus) CanTransitionTo(next StepStatus) bool {
	switch s {
	case StepStatusPending:
		return next == StepStatusInProgress
	case StepStatusInProgress:
		return next == StepStatusCompleted || next == StepStatusFailed
	case StepStatusFailed:
		return next == StepStatusInProgress
	default:
		return false
	}
}

// ParseStepStatus converts raw input into a StepStatus.
func ParseStepStatus(value string) (StepStatus, error) {
	for _, candidate := range validStepStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid step status %q", value)
}

package enums

import "fmt"

// CoordinationStatus tracks the lifecycle of a whole coordination run.
type CoordinationStatus string

const (
	CoordinationStatusPending      CoordinationStatus = "pending"
	CoordinationStatusCoordinating CoordinationStatus = "coordinating"
	CoordinationStatusCompleted    CoordinationStatus = "completed"
	CoordinationStatusFailed       CoordinationStatus = "failed"
)

var validCoordinationStatuses = []CoordinationStatus{
	CoordinationStatusPending,
	CoordinationStatusCoordinating,
	CoordinationStatusCompleted,
	CoordinationStatusFailed,
}

// String implements fmt.Stringer.
func (c CoordinationStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CoordinationStatus.
func (c CoordinationStatus) IsValid() bool {
	for _, candidate := range validCoordinationStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the run can no longer progress.
func (c CoordinationStatus) IsTerminal() bool {
	return c == CoordinationStatusCompleted || c == CoordinationStatusFailed
}

// ParseCoordinationStatus converts raw input into a CoordinationStatus.
func ParseCoordinationStatus(value string) (CoordinationStatus, error) {
	for _, candidate := range validCoordinationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coordination status %q", value)
}

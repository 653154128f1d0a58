package fanctrl

import "fmt"

// ValidationError rejects a mutation with a descriptive reason,
// leaving the configuration unchanged.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, a ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, a...)}
}

// CapabilityError rejects a mutation issued without write capability.
type CapabilityError struct{}

func (e *CapabilityError) Error() string {
	return "write capability required"
}

// NotFoundError rejects an operation referencing an unknown fan or
// schedule entry.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no %s with id '%s' found", e.Kind, e.ID)
}

func fanNotFound(fanId string) error {
	return &NotFoundError{Kind: "fan", ID: fanId}
}

func scheduleEntryNotFound(entryId int) error {
	return &NotFoundError{Kind: "schedule entry", ID: fmt.Sprintf("%d", entryId)}
}

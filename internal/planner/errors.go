package planner

// ValidationError rejects a generation request before any model call is made,
// e.g. an unknown scope or a year with no goals.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

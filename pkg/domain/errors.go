package domain

import "fmt"

// ErrNotConnected is returned when no pool is registered for a profile.
// The message is fixed: the UI matches it to prompt for reconnection.
type ErrNotConnected struct {
	ProfileID string
}

func (e *ErrNotConnected) Error() string {
	return "Not connected. Please connect first."
}

// ErrConnectionFailed wraps a transport or auth failure while opening a
// trial connection or acquiring one from a pool.
type ErrConnectionFailed struct {
	Target string
	Reason string
}

func (e *ErrConnectionFailed) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("Connection failed to %s: %s", e.Target, e.Reason)
	}
	return fmt.Sprintf("Connection error: %s", e.Reason)
}

// ErrQueryFailed carries the failing statement text and the driver message.
type ErrQueryFailed struct {
	Query  string
	Reason string
}

func (e *ErrQueryFailed) Error() string {
	return fmt.Sprintf("Query error [%s]: %s", e.Query, e.Reason)
}

// ErrInvalidIdentifier rejects a variable name before it is interpolated
// into a SET statement. No server round trip has happened.
type ErrInvalidIdentifier struct {
	Name string
}

func (e *ErrInvalidIdentifier) Error() string {
	return fmt.Sprintf("Invalid variable name: %s", e.Name)
}

// NewErrNotConnected creates a not-connected error for a profile.
func NewErrNotConnected(profileID string) *ErrNotConnected {
	return &ErrNotConnected{ProfileID: profileID}
}

// NewErrConnectionFailed creates a connection failure error.
func NewErrConnectionFailed(target, reason string) *ErrConnectionFailed {
	return &ErrConnectionFailed{Target: target, Reason: reason}
}

// NewErrQueryFailed creates a query failure error.
func NewErrQueryFailed(query, reason string) *ErrQueryFailed {
	return &ErrQueryFailed{Query: query, Reason: reason}
}

// NewErrInvalidIdentifier creates an invalid identifier error.
func NewErrInvalidIdentifier(name string) *ErrInvalidIdentifier {
	return &ErrInvalidIdentifier{Name: name}
}

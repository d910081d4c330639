package helpers

import "fmt"

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ObserverError struct {
	Message string
	Cause   error
}

func (e *ObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ObserverError) Unwrap() error {
	return e.Cause
}

// -----------------------------------------------------------------------------

// FetchError marks a failed rate fetch: the whole cycle is abandoned and the
// poll loop moves on. Never fatal.
type FetchError struct{ ObserverError }

// DeliveryError marks a failed push to one session: logged per subscriber,
// the cycle continues. Never unregisters the subscriber.
type DeliveryError struct{ ObserverError }

// -----------------------------------------------------------------------------

func NewFetchError(message string, cause error) *FetchError {
	return &FetchError{ObserverError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------

func NewDeliveryError(message string, cause error) *DeliveryError {
	return &DeliveryError{ObserverError{Message: message, Cause: cause}}
}

package dispatch

import "fmt"

// PanicError wraps a value recovered from a panicking send.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("send panicked: %v", e.Value)
}

package publish

import (
	"fmt"
)

// TransportError indicates the broadcast channel itself failed. It is fatal:
// the network subsystem is broken, and nothing further was attempted for the
// block.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to broadcast block: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationRejection indicates the chain rejected the block during import.
// The block has already been broadcast by the time this is returned; that is
// deliberate and is not undone.
type ValidationRejection struct {
	Cause string
}

func (e *ValidationRejection) Error() string {
	return fmt.Sprintf("block was broadcast but failed import: %s", e.Cause)
}

// ConfigurationError indicates a required collaborator is absent, such as an
// execution provider for an execution-era blinded block. It is a server-side
// problem, not a property of the block.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return e.Msg
}

// ReconstructionError indicates the builder fallback failed to supply the
// full payload for a blinded block. It is not retried.
type ReconstructionError struct {
	Cause string
}

func (e *ReconstructionError) Error() string {
	return fmt.Sprintf("blind block proposal failed: %s", e.Cause)
}

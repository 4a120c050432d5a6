package venture

import "fmt"

// InputError rejects a request before any provider is contacted.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "invalid input: " + e.Reason }

// PrimaryGenerationError means the mandatory startup-pack call failed and
// no result was produced.
type PrimaryGenerationError struct {
	Err error
}

func (e *PrimaryGenerationError) Error() string {
	return fmt.Sprintf("startup pack generation failed: %v", e.Err)
}

func (e *PrimaryGenerationError) Unwrap() error { return e.Err }

package files

import "errors"

var (
	// ErrNotFound is the single rejection class surfaced to clients. Sanitization
	// failures, failed preconditions and I/O errors all wrap it.
	ErrNotFound = errors.New("not found")

	// ErrNameExhausted indicates the namer ran out of suffix attempts.
	ErrNameExhausted = errors.New("no available name")

	// ErrBaseDirectory indicates an operation targeted the base directory itself.
	ErrBaseDirectory = errors.New("operation not permitted on base directory")
)

// reject wraps err so that errors.Is(err, ErrNotFound) holds while the cause stays
// available for logging.
func reject(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &OpError{Op: op, Err: err}
}

// OpError records a failed filesystem operation.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *OpError) Unwrap() []error { return []error{ErrNotFound, e.Err} }

package bench

import (
	"errors"
	"fmt"
)

// Class partitions harness failures by how the frame loop reacts to them.
type Class int

const (
	// Fatal aborts the run: bad preconditions, unreachable device,
	// transfer failures. No retry, no partial results.
	Fatal Class = iota
	// EndOfStream is the expected termination signal in streaming mode:
	// no more frames to read. Not an error to the caller.
	EndOfStream
	// Recoverable covers per-frame persistence failures only: logged
	// with frame context, then the loop continues.
	Recoverable
)

func (c Class) String() string {
	switch c {
	case Fatal:
		return "fatal"
	case EndOfStream:
		return "end-of-stream"
	case Recoverable:
		return "recoverable"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// ErrEndOfStream marks a frame load failure in streaming mode. Wrap it
// with the frame context; Classify recognizes it through the chain.
var ErrEndOfStream = errors.New("end of stream")

// WriteError is a per-frame disparity persistence failure.
type WriteError struct {
	Frame int
	Path  string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to save frame %d to %s: %v", e.Frame, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Classify maps an error onto the harness failure taxonomy. Anything not
// explicitly end-of-stream or a write failure is fatal.
func Classify(err error) Class {
	if errors.Is(err, ErrEndOfStream) {
		return EndOfStream
	}
	var we *WriteError
	if errors.As(err, &we) {
		return Recoverable
	}
	return Fatal
}

package pipeline

import "fmt"

// SourceReadError reports a container reader failure. The affected file is
// skipped; sibling files continue.
type SourceReadError struct {
	Path string
	Err  error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("source read failed for %s: %v", e.Path, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// SinkWriteError reports a point-cloud writer or metadata recorder failure.
// The affected scan's output is considered failed as a whole.
type SinkWriteError struct {
	Path string
	Err  error
}

func (e *SinkWriteError) Error() string {
	return fmt.Sprintf("sink write failed for %s: %v", e.Path, e.Err)
}

func (e *SinkWriteError) Unwrap() error { return e.Err }

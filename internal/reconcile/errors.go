package reconcile

import "fmt"

// ImportError reports the row at which an import run failed. The run is
// aborted and rolled back; the message names the row so the user can fix the
// offending line and retry.
type ImportError struct {
	Row int
	Err error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import failed at row %d: %v", e.Row, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

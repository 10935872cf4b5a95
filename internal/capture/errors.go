package capture

import (
	"errors"
	"fmt"
)

// ErrDeviceUnavailable means the frame source could not be acquired. It
// disables tracking but must not crash the orchestrator.
var ErrDeviceUnavailable = errors.New("capture device unavailable")

// #region model-load-failure

// ModelLoadError reports that one estimator failed to load. The capability
// degrades to disabled; the rest of the pipeline proceeds.
type ModelLoadError struct {
	Capability string
	Err        error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model load failed for %s: %v", e.Capability, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// #endregion model-load-failure

// #region processing-error

// ProcessingError wraps a single-tick failure. Ticks that fail are logged and
// skipped; the loop continues.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("tick processing failed at %s: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// #endregion processing-error

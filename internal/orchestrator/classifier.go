package orchestrator

import (
	"errors"

	"github.com/elitecommand/aura-session/internal/adapt"
	"github.com/elitecommand/aura-session/internal/backend"
	"github.com/elitecommand/aura-session/internal/capture"
)

// #region failure-class

// FailureClass buckets component errors for recovery dispatch.
type FailureClass string

const (
	FailureDevice     FailureClass = "device_unavailable"
	FailureModelLoad  FailureClass = "model_load"
	FailureProcessing FailureClass = "processing"
	FailureRejection  FailureClass = "adaptation_rejected"
	FailureTransform  FailureClass = "transform"
	FailureNetwork    FailureClass = "network"
	FailureUnknown    FailureClass = "unknown"
)

// Classify maps an error to its failure class via the component error types.
func Classify(err error) FailureClass {
	var mle *capture.ModelLoadError
	var pe *capture.ProcessingError
	var te *adapt.TransformError
	switch {
	case errors.Is(err, capture.ErrDeviceUnavailable):
		return FailureDevice
	case errors.As(err, &mle):
		return FailureModelLoad
	case errors.As(err, &pe):
		return FailureProcessing
	case errors.Is(err, adapt.ErrRejected):
		return FailureRejection
	case errors.As(err, &te):
		return FailureTransform
	case errors.Is(err, backend.ErrBackendUnavailable):
		return FailureNetwork
	default:
		return FailureUnknown
	}
}

// #endregion failure-class

package adapt

import (
	"errors"
	"fmt"
)

// ErrRejected is the errors.Is target for adaptations refused by the
// admission gate. A rejection leaves all state untouched.
var ErrRejected = errors.New("adaptation rejected")

// #region rejected

// RejectReason says why the gate refused an adaptation.
type RejectReason string

const (
	RejectRateLimited RejectReason = "rate_limited"
	RejectCooldown    RejectReason = "cooldown"
)

// RejectedError carries the gate's reason.
type RejectedError struct {
	Reason RejectReason
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("adaptation rejected (%s): %s", e.Reason, e.Detail)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// #endregion rejected

// #region transform-failure

// TransformError means a type-specific transform failed after admission. The
// engine reverts to the pre-transform snapshot before returning it.
type TransformError struct {
	Type Type
	Err  error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform %s failed: %v", e.Type, e.Err)
}

func (e *TransformError) Unwrap() error { return e.Err }

// #endregion transform-failure

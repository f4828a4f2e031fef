package core

import "errors"

// Sentinel errors the root package maps onto the public, structured
// *armkernel.Error codes; kept as plain sentinels here (rather than
// the root package's structured type) to avoid an import cycle, since
// the root package imports core to build the kernel around it.
var (
	ErrInvalidDescriptor   = errors.New("invalid descriptor")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrPidNotFound         = errors.New("pid not found")
)

package entity

import "errors"

// ErrUnknownTransferFailure is used when the engine reports an error without a cause.
var ErrUnknownTransferFailure = errors.New("unknown transfer failure")

package services

import "errors"

var (
	ErrFileClosed       = errors.New("file is completed or cancelled")
	ErrNothingDue       = errors.New("nothing is due for this payment")
	ErrInvalidState     = errors.New("invalid status change")
	ErrAssetUnavailable = errors.New("asset is not available")
	// ErrInvalidPayment covers malformed payment requests.
	ErrInvalidPayment = errors.New("invalid payment")
)

package mapper

import (
	"github.com/mcncl/jsonprop/internal/errors"
)

// Errors returned while registering field metadata. They are wrapped in a
// configuration error; use errors.Is to test for them.
var (
	ErrInvalidDescriptor = errors.ErrInvalidDescriptor
	ErrInvalidClass      = errors.ErrInvalidClass
	ErrUnknownField      = errors.ErrUnknownField
	ErrUnknownConverter  = errors.ErrUnknownConverter
	ErrInvalidTag        = errors.ErrInvalidTag
)

// Error is the error type returned by this package.
type Error = errors.AppError

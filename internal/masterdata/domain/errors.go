package masterdata

import "errors"

// ErrInvalidLimitOrdering indicates a rejected limit edit; nothing is written.
var ErrInvalidLimitOrdering = errors.New("masterdata: invalid limit ordering")

// ErrUnknownParameter indicates a parameter lookup miss.
var ErrUnknownParameter = errors.New("masterdata: unknown parameter")

// ErrUnknownMachine indicates a machine lookup miss.
var ErrUnknownMachine = errors.New("masterdata: unknown machine")

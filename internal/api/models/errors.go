package models

import (
	"errors"

	"blueprint/internal/pintype"
)

var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrPinNotFound         = errors.New("pin not found")
	ErrDuplicateNode       = errors.New("node id already exists")
	ErrDuplicateConnection = errors.New("connection already exists")
	ErrConnectionNotFound  = errors.New("connection not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrWrongDirection      = errors.New("connections run from an output pin to an input pin")
	ErrSelfConnection      = errors.New("a node cannot connect to itself")
	ErrInvalidVariable     = errors.New("invalid variable")
)

// IncompatibleError carries the type engine verdict for a rejected connection.
type IncompatibleError struct {
	Result pintype.Result
}

func (e *IncompatibleError) Error() string {
	return e.Result.ErrorMessage
}

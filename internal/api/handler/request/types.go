package request

import "blueprint/internal/pintype"

type ValidateConnection struct {
	From pintype.Type `json:"from" validate:"required"`
	To   pintype.Type `json:"to" validate:"required"`
	// Kind defaults to the kind implied by the pin types.
	Kind pintype.Kind `json:"kind,omitempty" validate:"omitempty,oneof=execution data"`
}

type ConvertValue struct {
	Value any          `json:"value"`
	From  pintype.Type `json:"from" validate:"required"`
	To    pintype.Type `json:"to" validate:"required"`
}

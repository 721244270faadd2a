package models

import (
	"fmt"

	"blueprint/internal/pintype"
)

// Variable is a named value scoped to one flowchart.
type Variable struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         pintype.Type `json:"type"`
	DefaultValue any          `json:"defaultValue,omitempty"`
	Description  string       `json:"description,omitempty"`
}

// Validate rejects variables without a name or typed as execution. A default
// value must be convertible to the declared type.
func (v Variable) Validate() error {
	if v.Name == "" {
		return fmt.Errorf("%w: variable %q has no name", ErrInvalidVariable, v.ID)
	}
	if v.Type == "" {
		return fmt.Errorf("%w: variable %q has no type", ErrInvalidVariable, v.Name)
	}
	if v.Type == pintype.Execution {
		return fmt.Errorf("%w: variable %q cannot be of type execution", ErrInvalidVariable, v.Name)
	}
	// Media and custom payloads are opaque to the converters
	if v.DefaultValue == nil || v.Type.IsMedia() || v.Type.IsCustom() {
		return nil
	}
	if conv := pintype.ConvertValue(v.DefaultValue, pintype.TypeOfValue(v.DefaultValue), v.Type); !conv.Success {
		return fmt.Errorf("%w: default of variable %q: %s", ErrInvalidVariable, v.Name, conv.Error)
	}
	return nil
}

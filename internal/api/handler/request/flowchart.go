package request

import "blueprint/internal/api/models"

type CreateFlowchart struct {
	Name        string        `json:"name" validate:"required,max=200"`
	Description string        `json:"description"`
	Graph       *models.Graph `json:"graph,omitempty"`
}

// UpdateFlowchart patches metadata. A present graph replaces the stored one
// and goes through the same diagnosis as a save from the editor.
type UpdateFlowchart struct {
	Name        *string       `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string       `json:"description,omitempty"`
	Graph       *models.Graph `json:"graph,omitempty"`
}

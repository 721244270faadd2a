package response

import (
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/catalog"
)

type Flowchart struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint      `json:"creatorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FlowchartWithGraph struct {
	Flowchart
	Graph models.Graph `json:"graph"`
	// Diagnosis is set on writes and reports what the save removed.
	Diagnosis *catalog.Report `json:"diagnosis,omitempty"`
}

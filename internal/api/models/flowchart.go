package models

import "time"

// Flowchart is the persisted unit of work: metadata plus one graph document.
type Flowchart struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatorID   uint      `gorm:"index" json:"creatorId"`
	Graph       Graph     `gorm:"type:jsonb" json:"graph"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

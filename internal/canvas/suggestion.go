package canvas

import (
	"fmt"

	"blueprint/internal/api/models"
)

type SuggestionType string

const SuggestionAddNode SuggestionType = "add_node"

// Suggestion is an action proposed by the assistant.
type Suggestion struct {
	Type SuggestionType  `json:"type" validate:"required"`
	Data *SuggestionData `json:"data,omitempty"`
}

type SuggestionData struct {
	NodeType string `json:"nodeType"`
}

// ApplySuggestion performs add_node exactly like a user adding the node at
// the centre of the visible canvas. Other suggestion types are ignored.
func (c *Controller) ApplySuggestion(s Suggestion) (*models.Node, []Change, error) {
	if s.Type != SuggestionAddNode {
		c.logger.Debug().Str("type", string(s.Type)).Msg("Ignoring suggestion")
		return nil, nil, nil
	}
	if s.Data == nil || s.Data.NodeType == "" {
		return nil, nil, fmt.Errorf("add_node suggestion is missing data.nodeType")
	}
	at := c.toWorld(c.size.Center())
	node, changes, err := c.AddNode(s.Data.NodeType, at)
	if err != nil {
		return nil, nil, err
	}
	return &node, changes, nil
}

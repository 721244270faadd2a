package catalog

import (
	"errors"
	"fmt"

	"blueprint/internal/api/models"
)

var ErrUnknownNodeType = errors.New("unknown node type")

// Instantiate creates a node from its template. Pins are copied so the node
// owns its own pin lists.
func Instantiate(c Catalog, typeID, nodeID string, pos models.Position) (models.Node, error) {
	t, ok := c.Get(typeID)
	if !ok {
		return models.Node{}, fmt.Errorf("%w: %s", ErrUnknownNodeType, typeID)
	}
	return models.Node{
		ID:         nodeID,
		Type:       t.ID,
		Position:   pos,
		InputPins:  append([]models.Pin(nil), t.InputPins...),
		OutputPins: append([]models.Pin(nil), t.OutputPins...),
	}, nil
}

// MissingAdapters lists the adapter node types the type engine can suggest
// but the catalog does not provide.
func MissingAdapters(c Catalog) []string {
	var missing []string
	for _, id := range adapterTypes {
		if _, ok := c.Get(id); !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

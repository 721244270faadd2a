package canvas

import (
	"fmt"

	"blueprint/internal/api/models"
	"blueprint/internal/geometry"
)

type ChangeKind string

const (
	NodeAdded         ChangeKind = "node_added"
	NodeMoved         ChangeKind = "node_moved"
	NodeDeleted       ChangeKind = "node_deleted"
	CommentMoved      ChangeKind = "comment_moved"
	CommentDeleted    ChangeKind = "comment_deleted"
	ConnectionAdded   ChangeKind = "connection_added"
	ConnectionRemoved ChangeKind = "connection_removed"
	SelectionChanged  ChangeKind = "selection_changed"
	ViewportChanged   ChangeKind = "viewport_changed"
)

// Change describes one mutation made while handling an event. Graph
// changes are what collaborators persist and broadcast; selection and
// viewport changes are local to the editing session.
type Change struct {
	Kind       ChangeKind         `json:"kind"`
	Node       *models.Node       `json:"node,omitempty"`
	NodeID     string             `json:"nodeId,omitempty"`
	CommentID  string             `json:"commentId,omitempty"`
	Position   *models.Position   `json:"position,omitempty"`
	Connection *models.Connection `json:"connection,omitempty"`
	Selection  *Selection         `json:"selection,omitempty"`
	Viewport   *geometry.Viewport `json:"viewport,omitempty"`
}

// AffectsGraph reports whether the change mutates persisted graph content.
func (c Change) AffectsGraph() bool {
	switch c.Kind {
	case SelectionChanged, ViewportChanged:
		return false
	default:
		return true
	}
}

// GraphChanges keeps only the persisted mutations.
func GraphChanges(changes []Change) []Change {
	var out []Change
	for _, c := range changes {
		if c.AffectsGraph() {
			out = append(out, c)
		}
	}
	return out
}

// ApplyChange replays a graph change made by another editor. Changes that
// no longer apply, such as moving a node that was deleted meanwhile, are
// reported and skipped by the caller.
func ApplyChange(g *models.Graph, c Change) error {
	switch c.Kind {
	case NodeAdded:
		if c.Node == nil {
			return fmt.Errorf("%s without node", c.Kind)
		}
		return g.AddNode(*c.Node)
	case NodeMoved:
		if c.Position == nil {
			return fmt.Errorf("%s without position", c.Kind)
		}
		return g.MoveNode(c.NodeID, *c.Position)
	case NodeDeleted:
		_, err := g.DeleteNode(c.NodeID)
		return err
	case CommentMoved:
		cm, ok := g.FindComment(c.CommentID)
		if !ok || c.Position == nil {
			return fmt.Errorf("%w: %s", models.ErrCommentNotFound, c.CommentID)
		}
		cm.Position = *c.Position
		return nil
	case CommentDeleted:
		return g.DeleteComment(c.CommentID)
	case ConnectionAdded:
		if c.Connection == nil {
			return fmt.Errorf("%s without connection", c.Kind)
		}
		_, err := g.AddConnection(*c.Connection)
		return err
	case ConnectionRemoved:
		if c.Connection == nil {
			return fmt.Errorf("%s without connection", c.Kind)
		}
		_, err := g.RemoveConnection(c.Connection.ID)
		return err
	default:
		return nil
	}
}

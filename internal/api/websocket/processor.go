package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/canvas"
	"blueprint/internal/catalog"
	"blueprint/internal/geometry"
	"blueprint/pkg"

	"github.com/rs/zerolog"
)

// FlowchartStore persists what editing sessions produce
type FlowchartStore interface {
	SaveGraph(id uint, g *models.Graph) (*models.Graph, catalog.Report, error)
	SaveViewport(id uint, session string, vp geometry.Viewport)
}

// ChangePublisher fans committed graph changes out to other servers
type ChangePublisher interface {
	Publish(flowchartID uint, changes []canvas.Change) error
}

// Result is what processing one message produced: a reply for the sender
// and an optional message for the whole room.
type Result struct {
	Reply     *Message
	Broadcast *Message
}

// MessageProcessor turns editor messages into canvas events and graph edits
type MessageProcessor struct {
	flowcharts FlowchartStore
	publisher  ChangePublisher
	logger     zerolog.Logger
}

func NewMessageProcessor(flowcharts FlowchartStore, publisher ChangePublisher, logger zerolog.Logger) *MessageProcessor {
	return &MessageProcessor{
		flowcharts: flowcharts,
		publisher:  publisher,
		logger:     logger,
	}
}

// ProcessMessage handles one message of a client that joined its room
func (p *MessageProcessor) ProcessMessage(c *Client, msg *Message) (Result, error) {
	p.logger.Debug().Str("type", string(msg.Type)).Str("clientId", c.ID).Msg("Processing message")

	switch msg.Type {
	case MessageTypeSave:
		return p.processSave(c)
	case MessageTypeSuggestion:
		return p.processSuggestion(c, msg)
	case MessageTypeAddNode:
		return p.processAddNode(c, msg)
	case MessageTypeGetState:
		return p.edit(c, func() ([]canvas.Change, error) { return nil, nil })
	}

	ev, err := p.decodeEvent(msg)
	if err != nil {
		return Result{}, err
	}
	return p.edit(c, func() ([]canvas.Change, error) {
		return c.Controller.Handle(ev), nil
	})
}

// Leave remembers the camera of a departing client
func (p *MessageProcessor) Leave(c *Client) {
	if c.Room == nil || c.Controller == nil || p.flowcharts == nil {
		return
	}
	var vp geometry.Viewport
	c.Room.Edit(func(*models.Graph) { vp = c.Controller.Viewport() })
	p.flowcharts.SaveViewport(c.FlowchartID, c.Session, vp)
}

func (p *MessageProcessor) validateData(msg *Message, out any) error {
	dataBytes, err := json.Marshal(msg.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal message data: %w", err)
	}

	if err := json.Unmarshal(dataBytes, out); err != nil {
		return fmt.Errorf("invalid message data: %w", err)
	}

	if err := pkg.Validate(out); err != nil {
		return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	return nil
}

func (p *MessageProcessor) decodeEvent(msg *Message) (canvas.Event, error) {
	switch msg.Type {
	case MessageTypePointerDown:
		var pl PointerPayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.PointerDown{Button: pl.button(), Shift: pl.Shift, Screen: pl.point()}, nil

	case MessageTypePointerMove:
		var pl PointerPayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.PointerMove{Screen: pl.point()}, nil

	case MessageTypePointerUp:
		var pl PointerPayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.PointerUp{Button: pl.button(), Screen: pl.point()}, nil

	case MessageTypeWheel:
		var pl WheelPayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.Wheel{DeltaY: pl.DeltaY, Screen: geometry.Point{X: pl.X, Y: pl.Y}}, nil

	case MessageTypeKeyDown:
		var pl KeyPayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.KeyDown{Key: pl.Key, TextInputFocused: pl.TextInputFocused}, nil

	case MessageTypeResize:
		var pl ResizePayload
		if err := p.validateData(msg, &pl); err != nil {
			return nil, err
		}
		return canvas.Resize{Size: geometry.Size{Width: pl.Width, Height: pl.Height}}, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

// edit runs fn under the room lock, answers the sender with its fresh scene
// and turns graph changes into a room broadcast.
func (p *MessageProcessor) edit(c *Client, fn func() ([]canvas.Change, error)) (Result, error) {
	var (
		changes []canvas.Change
		scene   canvas.Scene
		err     error
	)
	c.Room.Edit(func(*models.Graph) {
		changes, err = fn()
		scene = c.Controller.Scene()
	})
	if err != nil {
		return Result{}, err
	}

	reply := NewStateMessage(c.FlowchartID, c.ID, scene)
	result := Result{Reply: &reply}

	graphChanges := canvas.GraphChanges(changes)
	if len(graphChanges) > 0 {
		update := NewGraphUpdateMessage(c.FlowchartID, c.ID, c.Username, GraphUpdate{Changes: graphChanges})
		result.Broadcast = &update
		p.publish(c.FlowchartID, graphChanges)
	}
	return result, nil
}

func (p *MessageProcessor) processSuggestion(c *Client, msg *Message) (Result, error) {
	var suggestion canvas.Suggestion
	if err := p.validateData(msg, &suggestion); err != nil {
		return Result{}, err
	}
	return p.edit(c, func() ([]canvas.Change, error) {
		_, changes, err := c.Controller.ApplySuggestion(suggestion)
		return changes, err
	})
}

func (p *MessageProcessor) processAddNode(c *Client, msg *Message) (Result, error) {
	var pl AddNodePayload
	if err := p.validateData(msg, &pl); err != nil {
		return Result{}, err
	}
	return p.edit(c, func() ([]canvas.Change, error) {
		_, changes, err := c.Controller.AddNode(pl.NodeType, geometry.Point{X: pl.X, Y: pl.Y})
		return changes, err
	})
}

// processSave persists the room graph. Connections the save drops and the
// diagnostics it attaches become visible to every editor of the room.
func (p *MessageProcessor) processSave(c *Client) (Result, error) {
	if p.flowcharts == nil {
		return Result{}, errors.New("saving is not available")
	}

	var (
		saved  *models.Graph
		report catalog.Report
		err    error
		vp     geometry.Viewport
	)
	c.Room.Edit(func(g *models.Graph) {
		vp = c.Controller.Viewport()
		snapshot := g.Clone()
		snapshot.Viewport = &vp
		saved, report, err = p.flowcharts.SaveGraph(c.FlowchartID, snapshot)
		if err != nil {
			return
		}
		*g = *saved.Clone()
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to save flowchart: %w", err)
	}
	p.flowcharts.SaveViewport(c.FlowchartID, c.Session, vp)

	p.logger.Info().
		Uint("flowchartId", c.FlowchartID).
		Str("clientId", c.ID).
		Int("removedConnections", len(report.Removed)).
		Int("invalidVariables", len(report.InvalidVariables)).
		Msg("Flowchart saved via WebSocket")

	msg := Message{
		Type:        MessageTypeSaved,
		FlowchartID: c.FlowchartID,
		ClientID:    c.ID,
		Username:    c.Username,
		Timestamp:   time.Now(),
		Data:        Saved{Graph: saved, Diagnosis: report},
	}
	return Result{Broadcast: &msg}, nil
}

func (p *MessageProcessor) publish(flowchartID uint, changes []canvas.Change) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(flowchartID, changes); err != nil {
		p.logger.Warn().Err(err).Uint("flowchartId", flowchartID).Msg("Failed to publish graph changes")
	}
}

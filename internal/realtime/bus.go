package realtime

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"blueprint/internal/canvas"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ChangeEvent is the payload published on a flowchart changes subject.
type ChangeEvent struct {
	// Origin identifies the publishing process so it can skip its own events
	Origin      string          `json:"origin"`
	FlowchartID uint            `json:"flowchartId"`
	Changes     []canvas.Change `json:"changes"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Bus carries committed graph changes between API servers over NATS.
// A nil *Bus is valid and publishes nothing.
type Bus struct {
	conn     *nats.Conn
	tenantID string
	origin   string
	logger   zerolog.Logger
}

func NewBus(natsURL, tenantID string, logger zerolog.Logger) (*Bus, error) {
	nc, err := nats.Connect(natsURL, nats.Name("blueprint"))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Bus{
		conn:     nc,
		tenantID: tenantID,
		origin:   uuid.NewString(),
		logger:   logger,
	}, nil
}

// changesSubject is "tenant.<tid>.flowchart.<id>.changes"
func changesSubject(tenantID string, flowchartID uint) string {
	return fmt.Sprintf("tenant.%s.flowchart.%d.changes", tenantID, flowchartID)
}

func (b *Bus) Publish(flowchartID uint, changes []canvas.Change) error {
	if b == nil || len(changes) == 0 {
		return nil
	}
	data, err := json.Marshal(ChangeEvent{
		Origin:      b.origin,
		FlowchartID: flowchartID,
		Changes:     changes,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := b.conn.Publish(changesSubject(b.tenantID, flowchartID), data); err != nil {
		return fmt.Errorf("nats publish: %w", err)
	}
	return nil
}

// Subscribe calls fn for every change event of the tenant published by
// another process.
func (b *Bus) Subscribe(fn func(ChangeEvent)) error {
	subject := fmt.Sprintf("tenant.%s.flowchart.*.changes", b.tenantID)
	_, err := b.conn.Subscribe(subject, func(msg *nats.Msg) {
		ev, err := decodeChangeEvent(msg.Subject, msg.Data)
		if err != nil {
			b.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Dropping change event")
			return
		}
		if ev.Origin == b.origin {
			return
		}
		fn(ev)
	})
	if err != nil {
		return fmt.Errorf("nats subscribe %q: %w", subject, err)
	}

	b.logger.Info().Str("subject", subject).Msg("Subscribed to flowchart changes")
	return nil
}

// Close drains the NATS connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn().Err(err).Msg("nats drain")
	}
}

// decodeChangeEvent trusts the subject over the payload for the flowchart id
func decodeChangeEvent(subject string, data []byte) (ChangeEvent, error) {
	var ev ChangeEvent
	id, err := parseFlowchartIDFromSubject(subject)
	if err != nil {
		return ev, err
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		return ev, fmt.Errorf("invalid change event: %w", err)
	}
	ev.FlowchartID = id
	return ev, nil
}

// parseFlowchartIDFromSubject extracts the id from "tenant.<tid>.flowchart.<id>.changes"
func parseFlowchartIDFromSubject(subject string) (uint, error) {
	parts := strings.Split(subject, ".")
	if len(parts) != 5 {
		return 0, fmt.Errorf("expected 5 parts, got %d", len(parts))
	}
	if parts[2] != "flowchart" || parts[4] != "changes" {
		return 0, fmt.Errorf("not a flowchart changes subject: %q", subject)
	}
	id, err := strconv.ParseUint(parts[3], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid flowchart id %q: %w", parts[3], err)
	}
	return uint(id), nil
}

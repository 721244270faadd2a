package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Hub fans change events out to watchers subscribed by flowchart id.
type Hub struct {
	// Registered clients and the flowcharts each one follows
	clients map[*Client]map[uint]bool

	// flowchartID -> set of subscribed clients
	subscriptions map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	commands   chan command
	broadcast  chan broadcastMsg

	logger zerolog.Logger
}

type command struct {
	client      *Client
	action      string
	flowchartID uint
	// problem is set when the frame did not validate
	problem string
}

type broadcastMsg struct {
	flowchartID uint
	payload     []byte
}

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]map[uint]bool),
		subscriptions: make(map[uint]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		commands:      make(chan command),
		broadcast:     make(chan broadcastMsg, 256),
		logger:        logger,
	}
}

// Forward wraps a change event in the outgoing envelope and queues it for
// the watchers of its flowchart.
func (h *Hub) Forward(ev ChangeEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn().Err(err).Msg("marshal change event")
		return
	}
	data, err := json.Marshal(outgoingMsg{
		Type:        "flowchart.changes",
		FlowchartID: ev.FlowchartID,
		Payload:     payload,
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("marshal envelope")
		return
	}
	h.broadcast <- broadcastMsg{flowchartID: ev.FlowchartID, payload: data}
}

func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.clients[client] = make(map[uint]bool)
			h.logger.Debug().Int("total", len(h.clients)).Msg("Watcher registered")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug().Int("total", len(h.clients)).Msg("Watcher unregistered")
			}

		case cmd := <-h.commands:
			h.handle(cmd)

		case msg := <-h.broadcast:
			for client := range h.subscriptions[msg.flowchartID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow watcher, cut it off
					h.drop(client)
				}
			}
		}
	}
}

// handle applies a watcher command and answers it
func (h *Hub) handle(cmd command) {
	watching, ok := h.clients[cmd.client]
	if !ok {
		return
	}

	switch {
	case cmd.problem != "":
		h.reply(cmd.client, notice("error", cmd.flowchartID, cmd.problem))

	case cmd.action == actionSubscribe:
		if !watching[cmd.flowchartID] && len(watching) >= maxSubscriptions {
			h.reply(cmd.client, notice("error", cmd.flowchartID, fmt.Sprintf("cannot follow more than %d flowcharts", maxSubscriptions)))
			return
		}
		watching[cmd.flowchartID] = true
		if _, ok := h.subscriptions[cmd.flowchartID]; !ok {
			h.subscriptions[cmd.flowchartID] = make(map[*Client]bool)
		}
		h.subscriptions[cmd.flowchartID][cmd.client] = true
		h.logger.Debug().
			Uint("flowchartId", cmd.flowchartID).
			Int("subscribers", len(h.subscriptions[cmd.flowchartID])).
			Msg("Watcher subscribed")
		h.reply(cmd.client, notice("subscribed", cmd.flowchartID, "watching flowchart changes"))

	case cmd.action == actionUnsubscribe:
		delete(watching, cmd.flowchartID)
		h.forget(cmd.client, cmd.flowchartID)
		h.reply(cmd.client, notice("unsubscribed", cmd.flowchartID, "stopped watching"))
	}
}

// reply queues a message for one watcher, cutting it off when it lags
func (h *Hub) reply(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		h.drop(client)
	}
}

func (h *Hub) forget(client *Client, flowchartID uint) {
	subs := h.subscriptions[flowchartID]
	delete(subs, client)
	if len(subs) == 0 {
		delete(h.subscriptions, flowchartID)
	}
}

// drop forgets a client everywhere and closes its send channel
func (h *Hub) drop(client *Client) {
	watching, ok := h.clients[client]
	if !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	for flowchartID := range watching {
		h.forget(client, flowchartID)
	}
}

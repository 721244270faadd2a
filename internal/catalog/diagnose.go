package catalog

import (
	"errors"
	"fmt"
	"slices"

	"blueprint/internal/api/models"
	"blueprint/internal/pintype"
)

// Report summarises what Diagnose changed.
type Report struct {
	UnknownNodes     []string            `json:"unknownNodes,omitempty"`
	Removed          []models.Connection `json:"removed,omitempty"`
	InvalidVariables []string            `json:"invalidVariables,omitempty"`
}

// Diagnose refreshes node errors and warnings against the catalog and drops
// connections that are dangling, no longer type-check, repeat another one or
// exceed the single connection a data input accepts (the last one wins).
// Invalid variables are dropped too. Nothing is thrown: problems end up on
// the nodes themselves and in the report.
func Diagnose(g *models.Graph, c Catalog) Report {
	var report Report

	for i := range g.Nodes {
		n := &g.Nodes[i]
		n.ClearDiagnostics()
		if _, ok := c.Get(n.Type); !ok {
			n.AddError(fmt.Sprintf("Unknown node type: %s", n.Type))
			report.UnknownNodes = append(report.UnknownNodes, n.ID)
		}
	}

	valid := make([]models.Connection, 0, len(g.Connections))
	for _, conn := range g.Connections {
		from, _, res, err := g.CheckConnection(conn)
		switch {
		case err != nil:
			warnEndpoints(g, conn, connectionWarning(conn, err))
		case !res.Valid:
			warnEndpoints(g, conn, fmt.Sprintf("Removed connection %s: %s", conn.ID, res.ErrorMessage))
		default:
			conn.Type = from.Type
			valid = append(valid, conn)
			continue
		}
		report.Removed = append(report.Removed, conn)
	}
	g.Connections = dedupeConnections(g, valid, &report)

	variables := g.Variables
	g.Variables = nil
	for _, v := range variables {
		if err := g.AddVariable(v); err != nil {
			report.InvalidVariables = append(report.InvalidVariables, err.Error())
		}
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		for _, p := range n.InputPins {
			if !p.Required || p.DefaultValue != nil || p.IsExecution() {
				continue
			}
			if len(g.Incoming(n.ID, p.ID)) == 0 {
				n.AddWarning(fmt.Sprintf("Required input %q is not connected", p.Name))
			}
		}
	}

	return report
}

// dedupeConnections walks conns from the newest so that a repeated pair or a
// second edge into a data input loses to the one added last.
func dedupeConnections(g *models.Graph, conns []models.Connection, report *Report) []models.Connection {
	type pair struct{ from, to models.PinRef }
	seen := make(map[pair]bool, len(conns))
	fedInputs := make(map[models.PinRef]bool)

	kept := make([]models.Connection, 0, len(conns))
	var dropped []models.Connection
	for i := len(conns) - 1; i >= 0; i-- {
		conn := conns[i]
		key := pair{conn.From(), conn.To()}
		switch {
		case seen[key]:
			warnEndpoints(g, conn, fmt.Sprintf("Removed connection %s: duplicate", conn.ID))
		case conn.Kind() == pintype.KindData && fedInputs[conn.To()]:
			warnEndpoints(g, conn, fmt.Sprintf("Removed connection %s: input %q already has a connection", conn.ID, conn.ToPinID))
		default:
			seen[key] = true
			if conn.Kind() == pintype.KindData {
				fedInputs[conn.To()] = true
			}
			kept = append(kept, conn)
			continue
		}
		dropped = append(dropped, conn)
	}

	slices.Reverse(kept)
	slices.Reverse(dropped)
	report.Removed = append(report.Removed, dropped...)
	return kept
}

func connectionWarning(conn models.Connection, err error) string {
	switch {
	case errors.Is(err, models.ErrNodeNotFound):
		return fmt.Sprintf("Removed connection %s: missing node", conn.ID)
	case errors.Is(err, models.ErrPinNotFound):
		return fmt.Sprintf("Removed connection %s: missing pin", conn.ID)
	default:
		return fmt.Sprintf("Removed connection %s: %v", conn.ID, err)
	}
}

func warnEndpoints(g *models.Graph, conn models.Connection, msg string) {
	for _, id := range []string{conn.FromNodeID, conn.ToNodeID} {
		if n, ok := g.FindNode(id); ok {
			n.AddWarning(msg)
		}
	}
}

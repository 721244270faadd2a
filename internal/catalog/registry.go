// Package catalog is the read-only registry of node types the canvas can
// instantiate. It is injected into the editor rather than held globally.
package catalog

import (
	"sort"
	"sync"

	"blueprint/internal/api/models"
)

// NodeType is the template a node is instantiated from.
type NodeType struct {
	ID          string       `json:"id" yaml:"id"`
	Name        string       `json:"name" yaml:"name"`
	Category    string       `json:"category" yaml:"category"`
	Color       string       `json:"color" yaml:"color"`
	Icon        string       `json:"icon" yaml:"icon"`
	Description string       `json:"description,omitempty" yaml:"description"`
	InputPins   []models.Pin `json:"inputPins" yaml:"inputPins"`
	OutputPins  []models.Pin `json:"outputPins" yaml:"outputPins"`
}

// Catalog is what the editor needs from a node type source.
type Catalog interface {
	Get(typeID string) (NodeType, bool)
	List() []NodeType
}

// Registry is a Catalog that can be swapped atomically on reload.
type Registry struct {
	mu    sync.RWMutex
	types []NodeType
	byID  map[string]int
}

func NewRegistry(types []NodeType) *Registry {
	r := &Registry{}
	r.Replace(types)
	return r
}

// Replace swaps the whole content. Later duplicates win over earlier ones.
func (r *Registry) Replace(types []NodeType) {
	byID := make(map[string]int, len(types))
	deduped := make([]NodeType, 0, len(types))
	for _, t := range types {
		if i, ok := byID[t.ID]; ok {
			deduped[i] = t
			continue
		}
		byID[t.ID] = len(deduped)
		deduped = append(deduped, t)
	}

	r.mu.Lock()
	r.types = deduped
	r.byID = byID
	r.mu.Unlock()
}

func (r *Registry) Get(typeID string) (NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[typeID]
	if !ok {
		return NodeType{}, false
	}
	return r.types[i], true
}

func (r *Registry) List() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]NodeType(nil), r.types...)
}

// ByCategory returns the node types of one category.
func (r *Registry) ByCategory(category string) []NodeType {
	var out []NodeType
	for _, t := range r.List() {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns all unique categories, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, t := range r.List() {
		if !seen[t.Category] {
			seen[t.Category] = true
			cats = append(cats, t.Category)
		}
	}
	sort.Strings(cats)
	return cats
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

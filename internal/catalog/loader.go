package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"blueprint/internal/api/models"
	"blueprint/internal/pintype"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtin []byte

type catalogFile struct {
	NodeTypes []NodeType `yaml:"nodeTypes"`
}

// Parse decodes a YAML catalog document and checks every pin.
func Parse(data []byte) ([]NodeType, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for _, t := range f.NodeTypes {
		if err := validateType(t); err != nil {
			return nil, err
		}
	}
	return f.NodeTypes, nil
}

func validateType(t NodeType) error {
	if t.ID == "" {
		return fmt.Errorf("node type %q has no id", t.Name)
	}
	seen := make(map[string]bool)
	for _, pins := range [][]models.Pin{t.InputPins, t.OutputPins} {
		for _, p := range pins {
			if p.ID == "" {
				return fmt.Errorf("node type %s: pin without id", t.ID)
			}
			if seen[p.ID] {
				return fmt.Errorf("node type %s: duplicate pin id %s", t.ID, p.ID)
			}
			if p.Type == "" {
				return fmt.Errorf("node type %s: pin %s has no type", t.ID, p.ID)
			}
			seen[p.ID] = true
		}
	}
	for _, p := range t.OutputPins {
		if p.Required {
			return fmt.Errorf("node type %s: output pin %s cannot be required", t.ID, p.ID)
		}
	}
	return nil
}

// Builtin returns the node types shipped with the binary.
func Builtin() []NodeType {
	types, err := Parse(builtin)
	if err != nil {
		panic(err)
	}
	return types
}

// Load merges the builtin catalog with an optional external file. Entries of
// the file override builtin ones with the same id. An empty path or a missing
// file yields the builtin catalog alone.
func Load(path string) ([]NodeType, error) {
	types := Builtin()
	if path == "" {
		return types, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return types, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	extra, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return append(types, extra...), nil
}

// adapterTypes are the node types the type engine may suggest.
var adapterTypes = []string{
	pintype.AdapterMediaConverter,
	pintype.AdapterDataTransformer,
	pintype.AdapterTypeConverter,
}

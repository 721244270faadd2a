package response

import (
	"blueprint/internal/catalog"
	"blueprint/internal/pintype"
)

type PinType struct {
	Type        pintype.Type `json:"type"`
	Media       bool         `json:"media"`
	Structured  bool         `json:"structured"`
	CarriesData bool         `json:"carriesData"`
}

type TypeSet struct {
	Type  pintype.Type   `json:"type"`
	Types []pintype.Type `json:"types"`
}

type NodeTypeCategory struct {
	Name      string             `json:"name"`
	NodeTypes []catalog.NodeType `json:"nodeTypes"`
}

package mapper

import (
	"blueprint/internal/api/handler/request"
	"blueprint/internal/api/handler/response"
	"blueprint/internal/api/models"
	"blueprint/internal/catalog"
	"blueprint/internal/pintype"
	"blueprint/pkg"
)

// FlowchartMapper converts between flowchart DTOs and entities
type FlowchartMapper interface {
	CreateFlowchart(req request.CreateFlowchart) models.Flowchart
	PatchFlowchart(req request.UpdateFlowchart) map[string]any

	ToFlowchartResponses(entities []models.Flowchart) []response.Flowchart
	ToFlowchartResponse(f models.Flowchart) response.Flowchart
	ToFlowchartWithGraph(f models.Flowchart, report *catalog.Report) response.FlowchartWithGraph
}

type FlowchartMapperImpl struct{}

func NewFlowchartMapper() FlowchartMapper {
	return &FlowchartMapperImpl{}
}

func (m FlowchartMapperImpl) CreateFlowchart(req request.CreateFlowchart) models.Flowchart {
	f := models.Flowchart{
		Name:        req.Name,
		Description: req.Description,
		Graph:       *models.NewGraph(),
	}
	if req.Graph != nil {
		f.Graph = *req.Graph
	}
	return f
}

func (m FlowchartMapperImpl) PatchFlowchart(req request.UpdateFlowchart) map[string]any {
	patch := make(map[string]any)
	if req.Name != nil {
		patch["name"] = pkg.FromPtr(req.Name)
	}
	if req.Description != nil {
		patch["description"] = pkg.FromPtr(req.Description)
	}
	return patch
}

func (m FlowchartMapperImpl) ToFlowchartResponses(entities []models.Flowchart) []response.Flowchart {
	responses := make([]response.Flowchart, len(entities))
	for i, e := range entities {
		responses[i] = m.ToFlowchartResponse(e)
	}
	return responses
}

func (m FlowchartMapperImpl) ToFlowchartResponse(f models.Flowchart) response.Flowchart {
	return response.Flowchart{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatorID:   f.CreatorID,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func (m FlowchartMapperImpl) ToFlowchartWithGraph(f models.Flowchart, report *catalog.Report) response.FlowchartWithGraph {
	return response.FlowchartWithGraph{
		Flowchart: m.ToFlowchartResponse(f),
		Graph:     f.Graph,
		Diagnosis: report,
	}
}

// ToPinTypes describes catalog types in catalog order
func ToPinTypes(types []pintype.Type) []response.PinType {
	out := make([]response.PinType, len(types))
	for i, t := range types {
		out[i] = response.PinType{
			Type:        t,
			Media:       t.IsMedia(),
			Structured:  t.IsStructured(),
			CarriesData: t.CarriesData(),
		}
	}
	return out
}

// ToNodeTypeCategories groups node types by category, categories sorted
func ToNodeTypeCategories(c *catalog.Registry) []response.NodeTypeCategory {
	categories := c.Categories()
	out := make([]response.NodeTypeCategory, 0, len(categories))
	for _, name := range categories {
		out = append(out, response.NodeTypeCategory{Name: name, NodeTypes: c.ByCategory(name)})
	}
	return out
}

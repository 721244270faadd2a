package service

import (
	"errors"
	"fmt"
	"time"

	"blueprint"
	"blueprint/internal/api/models"
	"blueprint/internal/api/repo"
	"blueprint/internal/catalog"
	"blueprint/internal/geometry"
	"blueprint/pkg"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var ErrFlowchartNotFound = errors.New("flowchart not found")

type FlowchartService struct {
	flowchartRepo *repo.FlowchartRepository
	catalog       catalog.Catalog
	cacheTTL      time.Duration
	logger        zerolog.Logger
}

func NewFlowchartService(cat catalog.Catalog) *FlowchartService {
	return &FlowchartService{
		flowchartRepo: repo.NewFlowchartRepository(),
		catalog:       cat,
		cacheTTL:      blueprint.GetConfig().CacheTTL,
		logger:        blueprint.Logger,
	}
}

func flowchartCacheKey(id uint) string {
	return fmt.Sprintf("flowchart:%d", id)
}

func viewportCacheKey(id uint, session string) string {
	return fmt.Sprintf("flowchart:%d:viewport:%s", id, session)
}

// FindPage lists flowcharts without their graphs. Pages start at 1.
func (slf *FlowchartService) FindPage(page, pageSize int) ([]models.Flowchart, int64, error) {
	flowcharts, total, err := slf.flowchartRepo.FindPage((page-1)*pageSize, pageSize)
	if err != nil {
		slf.logger.Error().Err(err).Int("page", page).Msg("Error listing flowcharts")
		return nil, 0, err
	}
	return flowcharts, total, nil
}

// FindByID serves from the snapshot cache when possible
func (slf *FlowchartService) FindByID(id uint) (*models.Flowchart, error) {
	var cached models.Flowchart
	err := pkg.RedisGet(flowchartCacheKey(id), &cached)
	if err == nil {
		return &cached, nil
	}
	if !pkg.IsRedisNil(err) {
		slf.logger.Warn().Err(err).Uint("flowchartId", id).Msg("Flowchart cache read failed")
	}

	flowchart, err := slf.flowchartRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlowchartNotFound
		}
		slf.logger.Error().Err(err).Uint("flowchartId", id).Msg("Error getting flowchart")
		return nil, err
	}
	slf.cache(&flowchart)
	return &flowchart, nil
}

// Create diagnoses the initial graph before storing it
func (slf *FlowchartService) Create(flowchart models.Flowchart) (*models.Flowchart, catalog.Report, error) {
	report := slf.diagnose(&flowchart.Graph)
	if err := slf.flowchartRepo.Create(&flowchart); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating flowchart")
		return nil, report, err
	}
	slf.logger.Info().Uint("flowchartId", flowchart.ID).Str("name", flowchart.Name).Msg("Flowchart created")
	slf.cache(&flowchart)
	return &flowchart, report, nil
}

// Update patches name and description only
func (slf *FlowchartService) Update(id uint, patch map[string]any) (*models.Flowchart, error) {
	if err := slf.flowchartRepo.Update(id, patch); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFlowchartNotFound
		}
		slf.logger.Error().Err(err).Uint("flowchartId", id).Msg("Error updating flowchart")
		return nil, err
	}
	slf.evict(id)
	return slf.FindByID(id)
}

// SaveGraph validates every connection of g against the type engine, drops
// the ones that fail, annotates the nodes and stores the result. The caller's
// graph is not modified.
func (slf *FlowchartService) SaveGraph(id uint, g *models.Graph) (*models.Graph, catalog.Report, error) {
	graph := g.Clone()
	report := slf.diagnose(graph)

	if err := slf.flowchartRepo.UpdateGraph(id, *graph); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, report, ErrFlowchartNotFound
		}
		slf.logger.Error().Err(err).Uint("flowchartId", id).Msg("Error saving flowchart graph")
		return nil, report, err
	}
	slf.evict(id)

	slf.logger.Info().
		Uint("flowchartId", id).
		Int("nodes", len(graph.Nodes)).
		Int("connections", len(graph.Connections)).
		Int("removedConnections", len(report.Removed)).
		Int("invalidVariables", len(report.InvalidVariables)).
		Msg("Flowchart graph saved")
	return graph, report, nil
}

func (slf *FlowchartService) Delete(id uint) error {
	if err := slf.flowchartRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFlowchartNotFound
		}
		slf.logger.Error().Err(err).Uint("flowchartId", id).Msg("Error deleting flowchart")
		return err
	}
	slf.evict(id)
	return nil
}

// SaveViewport remembers the camera of an editing session so a reconnecting
// client lands where it left off.
func (slf *FlowchartService) SaveViewport(id uint, session string, vp geometry.Viewport) {
	if session == "" {
		return
	}
	if err := pkg.RedisSet(viewportCacheKey(id, session), vp, slf.cacheTTL); err != nil {
		slf.logger.Warn().Err(err).Uint("flowchartId", id).Msg("Viewport cache write failed")
	}
}

func (slf *FlowchartService) LoadViewport(id uint, session string) (geometry.Viewport, bool) {
	if session == "" {
		return geometry.Viewport{}, false
	}
	var vp geometry.Viewport
	if err := pkg.RedisGet(viewportCacheKey(id, session), &vp); err != nil {
		if !pkg.IsRedisNil(err) {
			slf.logger.Warn().Err(err).Uint("flowchartId", id).Msg("Viewport cache read failed")
		}
		return geometry.Viewport{}, false
	}
	vp.Zoom = geometry.ClampZoom(vp.Zoom)
	return vp, true
}

func (slf *FlowchartService) diagnose(g *models.Graph) catalog.Report {
	if g.Nodes == nil {
		g.Nodes = []models.Node{}
	}
	if g.Connections == nil {
		g.Connections = []models.Connection{}
	}
	if slf.catalog == nil {
		return catalog.Report{Removed: g.PruneConnections()}
	}
	return catalog.Diagnose(g, slf.catalog)
}

func (slf *FlowchartService) cache(flowchart *models.Flowchart) {
	if err := pkg.RedisSet(flowchartCacheKey(flowchart.ID), flowchart, slf.cacheTTL); err != nil {
		slf.logger.Warn().Err(err).Uint("flowchartId", flowchart.ID).Msg("Flowchart cache write failed")
	}
}

func (slf *FlowchartService) evict(id uint) {
	if err := pkg.RedisDelete(flowchartCacheKey(id)); err != nil {
		slf.logger.Warn().Err(err).Uint("flowchartId", id).Msg("Flowchart cache eviction failed")
	}
}

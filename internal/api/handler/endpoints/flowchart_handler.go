package endpoints

import (
	"errors"
	"net/http"
	"strconv"

	"blueprint"
	"blueprint/internal/api/handler/mapper"
	"blueprint/internal/api/handler/request"
	"blueprint/internal/api/handler/response"
	"blueprint/internal/api/models"
	"blueprint/internal/api/service"
	ws "blueprint/internal/api/websocket"
	"blueprint/internal/catalog"
	"blueprint/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type flowchartHandler struct {
	flowchartService *service.FlowchartService
	flowchartMapper  mapper.FlowchartMapper
	hub              *ws.Hub
	logger           zerolog.Logger
}

func newFlowchartHandler(flowcharts *service.FlowchartService, hub *ws.Hub) *flowchartHandler {
	return &flowchartHandler{
		flowchartService: flowcharts,
		flowchartMapper:  mapper.NewFlowchartMapper(),
		hub:              hub,
		logger:           blueprint.Logger,
	}
}

func FlowchartHandler(router *graceful.Graceful, flowcharts *service.FlowchartService, hub *ws.Hub) {
	h := newFlowchartHandler(flowcharts, hub)

	routes := router.Group("/api/v1/flowcharts")
	{
		routes.GET("", h.getAll)
		routes.GET("/:id", h.getByID)
		routes.POST("", h.create)
		routes.PUT("/:id", h.update)
		routes.DELETE("/:id", h.delete)
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

func respondFlowchartError(c *gin.Context, err error, msg string) {
	if errors.Is(err, service.ErrFlowchartNotFound) {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Flowchart not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, response.APIError{Message: msg})
}

// getAll lists flowcharts without their graphs, ?page=&pageSize=
func (slf *flowchartHandler) getAll(c *gin.Context) {
	page, pageSize := parsePage(c)
	entities, total, err := slf.flowchartService.FindPage(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to retrieve flowcharts"})
		return
	}
	c.JSON(http.StatusOK, response.Page[response.Flowchart]{
		Data:       slf.flowchartMapper.ToFlowchartResponses(entities),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	})
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// parsePage reads the paging query, falling back to sane values
func parsePage(c *gin.Context) (page, pageSize int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(defaultPageSize)))
	if err != nil || pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, min(pageSize, maxPageSize)
}

func (slf *flowchartHandler) getByID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	flowchart, err := slf.flowchartService.FindByID(id)
	if err != nil {
		respondFlowchartError(c, err, "Failed to retrieve flowchart")
		return
	}
	c.JSON(http.StatusOK, slf.flowchartMapper.ToFlowchartWithGraph(*flowchart, nil))
}

func (slf *flowchartHandler) create(c *gin.Context) {
	var req request.CreateFlowchart
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}

	flowchart, report, err := slf.flowchartService.Create(slf.flowchartMapper.CreateFlowchart(req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.APIError{Message: "Failed to create flowchart"})
		return
	}

	slf.logger.Info().Uint("flowchartId", flowchart.ID).Msg("Flowchart created")
	c.JSON(http.StatusCreated, slf.flowchartMapper.ToFlowchartWithGraph(*flowchart, &report))
}

// update patches the metadata and, when a graph is sent, replaces the graph
// of the flowchart and of any room editing it.
func (slf *flowchartHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req request.UpdateFlowchart
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}

	var report *catalog.Report
	if req.Graph != nil {
		saved, diagnosis, err := slf.flowchartService.SaveGraph(id, req.Graph)
		if err != nil {
			respondFlowchartError(c, err, "Failed to save flowchart graph")
			return
		}
		report = &diagnosis
		if slf.hub != nil {
			slf.hub.Reload(id, saved)
		}
	}

	var (
		flowchart *models.Flowchart
		err       error
	)
	if patch := slf.flowchartMapper.PatchFlowchart(req); len(patch) > 0 {
		flowchart, err = slf.flowchartService.Update(id, patch)
	} else {
		flowchart, err = slf.flowchartService.FindByID(id)
	}
	if err != nil {
		respondFlowchartError(c, err, "Failed to update flowchart")
		return
	}

	c.JSON(http.StatusOK, slf.flowchartMapper.ToFlowchartWithGraph(*flowchart, report))
}

func (slf *flowchartHandler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := slf.flowchartService.Delete(id); err != nil {
		respondFlowchartError(c, err, "Failed to delete flowchart")
		return
	}
	if slf.hub != nil {
		slf.hub.Close(id)
	}
	c.Status(http.StatusNoContent)
}

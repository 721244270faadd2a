package endpoints

import (
	"net/http"

	"blueprint/internal/api/handler/mapper"
	"blueprint/internal/api/handler/response"
	"blueprint/internal/catalog"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

type nodeTypeHandler struct {
	registry *catalog.Registry
}

// NodeTypeHandler serves the node-type catalog the editor instantiates from
func NodeTypeHandler(router *graceful.Graceful, registry *catalog.Registry) {
	registerNodeTypeRoutes(router.Group("/api/v1/node-types"), &nodeTypeHandler{registry: registry})
}

func registerNodeTypeRoutes(routes *gin.RouterGroup, h *nodeTypeHandler) {
	routes.GET("", h.getAll)
	routes.GET("/categories", h.getCategories)
	routes.GET("/:id", h.getByID)
}

// getAll lists node types, optionally filtered with ?category=
func (slf *nodeTypeHandler) getAll(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		types := slf.registry.ByCategory(category)
		if types == nil {
			types = []catalog.NodeType{}
		}
		c.JSON(http.StatusOK, types)
		return
	}
	c.JSON(http.StatusOK, slf.registry.List())
}

func (slf *nodeTypeHandler) getCategories(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.ToNodeTypeCategories(slf.registry))
}

func (slf *nodeTypeHandler) getByID(c *gin.Context) {
	t, ok := slf.registry.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Node type not found", Data: c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, t)
}

package endpoints

import (
	"net/http"

	"blueprint"
	"blueprint/internal/api/handler/mapper"
	"blueprint/internal/api/handler/request"
	"blueprint/internal/api/handler/response"
	"blueprint/internal/pintype"
	"blueprint/pkg"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type typeHandler struct {
	logger zerolog.Logger
}

func newTypeHandler(logger zerolog.Logger) *typeHandler {
	return &typeHandler{logger: logger}
}

// TypeHandler exposes the pin type engine
func TypeHandler(router *graceful.Graceful) {
	registerTypeRoutes(router.Group("/api/v1/types"), newTypeHandler(blueprint.Logger))
}

func registerTypeRoutes(routes *gin.RouterGroup, h *typeHandler) {
	routes.GET("", h.getAll)
	routes.GET("/:type/compatible", h.getCompatible)
	routes.GET("/:type/convertible", h.getConvertible)
	routes.POST("/validate", h.validate)
	routes.POST("/convert", h.convert)
}

func (slf *typeHandler) getAll(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.ToPinTypes(pintype.Catalog))
}

func (slf *typeHandler) getCompatible(c *gin.Context) {
	t := pintype.Type(c.Param("type"))
	types := pintype.CompatibleTypes(t)
	if types == nil {
		c.JSON(http.StatusNotFound, response.APIError{Message: "Unknown pin type", Data: t})
		return
	}
	c.JSON(http.StatusOK, response.TypeSet{Type: t, Types: types})
}

func (slf *typeHandler) getConvertible(c *gin.Context) {
	t := pintype.Type(c.Param("type"))
	c.JSON(http.StatusOK, response.TypeSet{Type: t, Types: pintype.ConvertibleTypes(t)})
}

// validate answers whether a connection between two pin types is allowed.
// A rejected pair is still a 200: the verdict is the payload.
func (slf *typeHandler) validate(c *gin.Context) {
	var req request.ValidateConnection
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}
	kind := req.Kind
	if kind == "" {
		kind = pintype.KindFor(req.From, req.To)
	}
	c.JSON(http.StatusOK, pintype.ValidateConnection(req.From, req.To, kind))
}

func (slf *typeHandler) convert(c *gin.Context) {
	var req request.ConvertValue
	if err := pkg.ParseAndValidate(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, response.APIError{Message: "Invalid request", Data: err.Error()})
		return
	}
	result := pintype.ConvertValue(req.Value, req.From, req.To)
	if !result.Success {
		slf.logger.Debug().Str("from", string(req.From)).Str("to", string(req.To)).Str("error", result.Error).Msg("Conversion failed")
	}
	c.JSON(http.StatusOK, result)
}

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/catalog"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/barbershop-booking-backend/internal/pkg/response"
)

type Handler struct {
	catalog catalog.Catalog
}

func NewHandler(c catalog.Catalog) *Handler {
	return &Handler{catalog: c}
}

func (h *Handler) ListServices(c *gin.Context) {
	services, err := h.catalog.ListServices(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ServiceResponse, len(services))
	for i, s := range services {
		items[i] = NewServiceResponse(s)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

func (h *Handler) GetService(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		response.BadRequest(c, err)
		return
	}

	s, err := h.catalog.GetService(c.Request.Context(), req.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewServiceResponse(s))
}

func (h *Handler) ListBarbers(c *gin.Context) {
	barbers, err := h.catalog.ListActiveBarbers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BarberResponse, len(barbers))
	for i, b := range barbers {
		items[i] = NewBarberResponse(b)
	}
	c.JSON(http.StatusOK, response.NewListResponse(items))
}

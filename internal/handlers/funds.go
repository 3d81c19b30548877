package handlers

import (
	"errors"
	"net/http"

	dom "github.com/SixTanDev/BTG/internal/domain"
	"github.com/SixTanDev/BTG/internal/dto"
	"github.com/SixTanDev/BTG/internal/service"

	"github.com/gin-gonic/gin"
)

// FundHandler exposes the fund catalog.
type FundHandler struct {
	svc *service.FundService
}

// NewFundHandler returns a new FundHandler.
func NewFundHandler(svc *service.FundService) *FundHandler {
	return &FundHandler{svc: svc}
}

// List godoc
// @Summary      List all subscribable funds
// @Tags         funds
// @Produce      json
// @Success      200  {object}  dto.ListFundsResponse
// @Failure      500  {object}  map[string]string
// @Router       /funds [get]
func (h *FundHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ListFundsResponse{Items: fundsToResponses(list)})
}

// Get godoc
// @Summary      Get a fund by id
// @Tags         funds
// @Produce      json
// @Param        id   path      string  true  "Fund ID"
// @Success      200  {object}  dto.FundResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /funds/{id} [get]
func (h *FundHandler) Get(c *gin.Context) {
	f, err := h.svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrFundNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "fund not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fundToResponse(f))
}

func fundToResponse(f dom.Fund) dto.FundResponse {
	return dto.FundResponse{
		ID:            f.ID,
		Name:          f.Name,
		Category:      f.Category,
		MinimumAmount: dto.FormatMinor(f.MinimumAmount),
	}
}

func fundsToResponses(list []dom.Fund) []dto.FundResponse {
	out := make([]dto.FundResponse, len(list))
	for i, f := range list {
		out[i] = fundToResponse(f)
	}
	return out
}

package handlers

import (
	"net/http"
	"strconv"

	"festival-bot-backend/internal/models"
	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type SlotsHandler struct {
	query *services.AdminQueryService
}

func NewSlotsHandler(query *services.AdminQueryService) *SlotsHandler {
	return &SlotsHandler{query: query}
}

type CreateSlotRequest struct {
	ActivityType string `json:"activity_type" binding:"required,max=50" example:"dance"`
	Day          string `json:"day" binding:"required,max=20" example:"saturday"`
	TimeSlot     string `json:"time_slot" binding:"required,max=10" example:"14:00"`
	MaxCapacity  int    `json:"max_capacity" binding:"required,min=1" example:"20"`
}

type UpdateSlotRequest struct {
	MaxCapacity int  `json:"max_capacity" binding:"required,min=1" example:"25"`
	Active      bool `json:"active" example:"true"`
}

// List godoc
// @Summary      List slots
// @Description  All slot definitions with current occupancy
// @Tags         slots
// @Produce      json
// @Security     BearerAuth
// @Param        activity_type query string false "Filter by activity"
// @Success      200 {array} services.SlotRow
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/slots [get]
func (h *SlotsHandler) List(c *gin.Context) {
	rows, err := h.query.ListSlots(c.Query("activity_type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// Create godoc
// @Summary      Create a slot
// @Tags         slots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateSlotRequest true "Slot data"
// @Success      201 {object} SlotDefinition
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/slots [post]
func (h *SlotsHandler) Create(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	slot := &models.SlotDefinition{
		ActivityType: req.ActivityType,
		Day:          req.Day,
		TimeSlot:     req.TimeSlot,
		MaxCapacity:  req.MaxCapacity,
		Active:       true,
	}
	if err := h.query.CreateSlot(slot); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// Update godoc
// @Summary      Update a slot
// @Description  Change capacity or toggle the slot on and off
// @Tags         slots
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Slot ID"
// @Param        request body UpdateSlotRequest true "Slot data"
// @Success      200 {object} SlotDefinition
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/slots/{id} [put]
func (h *SlotsHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid slot id"})
		return
	}

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	slot, err := h.query.SlotByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "slot not found"})
		return
	}

	slot.MaxCapacity = req.MaxCapacity
	slot.Active = req.Active
	if err := h.query.UpdateSlot(slot); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, slot)
}

// Delete godoc
// @Summary      Delete a slot
// @Tags         slots
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Slot ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/slots/{id} [delete]
func (h *SlotsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid slot id"})
		return
	}

	if _, err := h.query.SlotByID(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "slot not found"})
		return
	}
	if err := h.query.DeleteSlot(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "slot deleted"})
}

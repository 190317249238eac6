package handlers

import (
	"net/http"
	"strconv"
	"time"

	"festival-bot-backend/internal/models"
	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type BroadcastsHandler struct {
	query *services.AdminQueryService
}

func NewBroadcastsHandler(query *services.AdminQueryService) *BroadcastsHandler {
	return &BroadcastsHandler{query: query}
}

type BroadcastRequest struct {
	MessageText   string    `json:"message_text" binding:"required" example:"Через час открывается мастер-класс!"`
	Audience      string    `json:"audience" binding:"omitempty,oneof=all vacancies quest_finishers" example:"all"`
	ScheduledTime time.Time `json:"scheduled_time" binding:"required" example:"2026-07-04T15:00:00Z"`
}

// List godoc
// @Summary      List broadcasts
// @Tags         broadcasts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} ScheduledMessage
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/broadcasts [get]
func (h *BroadcastsHandler) List(c *gin.Context) {
	msgs, err := h.query.ListBroadcasts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// Create godoc
// @Summary      Schedule a broadcast
// @Tags         broadcasts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BroadcastRequest true "Broadcast data"
// @Success      201 {object} ScheduledMessage
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/broadcasts [post]
func (h *BroadcastsHandler) Create(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.ScheduledTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: services.ErrScheduledInPast.Error()})
		return
	}
	if req.Audience == "" {
		req.Audience = models.AudienceAll
	}

	msg := &models.ScheduledMessage{
		MessageText:   req.MessageText,
		Audience:      req.Audience,
		ScheduledTime: req.ScheduledTime,
	}
	if err := h.query.CreateBroadcast(msg); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.query.LogAction(c.GetUint("admin_id"), "create_broadcast", 0, req.Audience)
	c.JSON(http.StatusCreated, msg)
}

// Update godoc
// @Summary      Edit an unsent broadcast
// @Tags         broadcasts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Broadcast ID"
// @Param        request body BroadcastRequest true "Broadcast data"
// @Success      200 {object} ScheduledMessage
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/broadcasts/{id} [put]
func (h *BroadcastsHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid broadcast id"})
		return
	}

	msg, err := h.query.BroadcastByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "broadcast not found"})
		return
	}
	if msg.Sent {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "broadcast already sent"})
		return
	}

	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.ScheduledTime.Before(time.Now()) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: services.ErrScheduledInPast.Error()})
		return
	}

	msg.MessageText = req.MessageText
	if req.Audience != "" {
		msg.Audience = req.Audience
	}
	msg.ScheduledTime = req.ScheduledTime
	if err := h.query.UpdateBroadcast(msg); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, msg)
}

// Delete godoc
// @Summary      Delete an unsent broadcast
// @Tags         broadcasts
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Broadcast ID"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/broadcasts/{id} [delete]
func (h *BroadcastsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid broadcast id"})
		return
	}

	msg, err := h.query.BroadcastByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "broadcast not found"})
		return
	}
	if msg.Sent {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "broadcast already sent"})
		return
	}

	if err := h.query.DeleteBroadcast(uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "broadcast deleted"})
}

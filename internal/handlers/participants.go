package handlers

import (
	"net/http"
	"strconv"

	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ParticipantsHandler struct {
	query        *services.AdminQueryService
	participants *services.ParticipantService
}

func NewParticipantsHandler(query *services.AdminQueryService, participants *services.ParticipantService) *ParticipantsHandler {
	return &ParticipantsHandler{query: query, participants: participants}
}

func boolQuery(c *gin.Context, name string) *bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// List godoc
// @Summary      List participants
// @Description  Paginated participant listing with optional filters
// @Tags         participants
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Param        search query string false "Search in username, name, city"
// @Param        survey_completed query bool false "Filter by survey completion"
// @Param        vacancy_interested query bool false "Filter by vacancy interest"
// @Param        quest_completed query bool false "Filter by quest completion"
// @Success      200 {object} services.ParticipantPage
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/participants [get]
func (h *ParticipantsHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "50"))

	result, err := h.query.ListParticipants(services.ParticipantFilter{
		Search:            c.Query("search"),
		SurveyCompleted:   boolQuery(c, "survey_completed"),
		VacancyInterested: boolQuery(c, "vacancy_interested"),
		QuestCompleted:    boolQuery(c, "quest_completed"),
		Page:              page,
		PerPage:           perPage,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get godoc
// @Summary      Get participant detail
// @Description  Participant with registrations, survey answers, quest progress and generation job
// @Tags         participants
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Participant ID"
// @Success      200 {object} services.ParticipantDetail
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/participants/{id} [get]
func (h *ParticipantsHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid participant id"})
		return
	}

	detail, err := h.query.ParticipantDetail(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "participant not found"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// Delete godoc
// @Summary      Delete a participant
// @Description  Remove the participant and all dependent records
// @Tags         participants
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Participant ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/participants/{id} [delete]
func (h *ParticipantsHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid participant id"})
		return
	}

	if err := h.participants.Delete(uint(id)); err != nil {
		if err == services.ErrParticipantNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.query.LogAction(c.GetUint("admin_id"), "delete_participant", uint(id), "")
	c.JSON(http.StatusOK, MessageResponse{Message: "participant deleted"})
}

// Reset godoc
// @Summary      Reset a participant
// @Description  Clear progress so the participant can walk through the bot from the start
// @Tags         participants
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Participant ID"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/participants/{id}/reset [post]
func (h *ParticipantsHandler) Reset(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid participant id"})
		return
	}

	if err := h.participants.Reset(uint(id)); err != nil {
		if err == services.ErrParticipantNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.query.LogAction(c.GetUint("admin_id"), "reset_participant", uint(id), "")
	c.JSON(http.StatusOK, MessageResponse{Message: "participant reset"})
}

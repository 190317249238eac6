package handlers

import (
	"net/http"

	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// BotHandler serves the side channels used by on-site equipment, like
// QR terminals at quest checkpoints. Authenticated with the bot API key.
type BotHandler struct {
	participants *services.ParticipantService
	quest        *services.QuestTracker
}

func NewBotHandler(participants *services.ParticipantService, quest *services.QuestTracker) *BotHandler {
	return &BotHandler{participants: participants, quest: quest}
}

type QuestStepRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required" example:"123456789"`
	Step       int   `json:"step" binding:"required,min=1" example:"3"`
}

type QuestStepResponse struct {
	Outcome   string `json:"outcome" example:"updated"`
	Done      int    `json:"done" example:"3"`
	Total     int    `json:"total" example:"9"`
	Completed bool   `json:"completed" example:"false"`
}

// RegisterQuestStep godoc
// @Summary      Register a quest step
// @Description  Marks a quest checkpoint as found for the participant with the given Telegram ID
// @Tags         bot
// @Accept       json
// @Produce      json
// @Param        request body QuestStepRequest true "Step data"
// @Success      200 {object} QuestStepResponse
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /api/v1/bot/quest-step [post]
func (h *BotHandler) RegisterQuestStep(c *gin.Context) {
	var req QuestStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	p, err := h.participants.GetByTelegramID(req.TelegramID)
	if err != nil {
		if err == services.ErrParticipantNotFound {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	outcome, err := h.quest.RegisterStep(p.ID, req.Step)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	done, total, err := h.quest.ProgressSummary(p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := QuestStepResponse{Done: done, Total: total, Completed: done >= total}
	switch outcome {
	case services.StepUpdated:
		resp.Outcome = "updated"
	case services.StepAlreadyDone:
		resp.Outcome = "already_done"
	case services.StepOutOfRange:
		resp.Outcome = "out_of_range"
	}
	c.JSON(http.StatusOK, resp)
}

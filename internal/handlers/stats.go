package handlers

import (
	"net/http"
	"strconv"

	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	stats *services.StatsService
	query *services.AdminQueryService
	cfg   *services.ConfigStore
}

func NewStatsHandler(stats *services.StatsService, query *services.AdminQueryService, cfg *services.ConfigStore) *StatsHandler {
	return &StatsHandler{stats: stats, query: query, cfg: cfg}
}

// Dashboard godoc
// @Summary      Dashboard stats
// @Description  Participant totals, generation job counts and the error counter
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} services.DashboardStats
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	stats, err := h.stats.Dashboard(h.cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// QuestWinners godoc
// @Summary      Recent quest winners
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max results"
// @Success      200 {array} services.QuestWinner
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/stats/quest-winners [get]
func (h *StatsHandler) QuestWinners(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 200 {
		limit = 20
	}

	winners, err := h.stats.RecentQuestWinners(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, winners)
}

// RecentJobs godoc
// @Summary      Recent sticker generation jobs
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max results"
// @Success      200 {array} services.RecentJob
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/stats/recent-jobs [get]
func (h *StatsHandler) RecentJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 200 {
		limit = 20
	}

	jobs, err := h.stats.RecentJobs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// AdminLogs godoc
// @Summary      Recent admin actions
// @Tags         stats
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Max results"
// @Success      200 {array} models.AdminLog
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/stats/admin-logs [get]
func (h *StatsHandler) AdminLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	logs, err := h.query.RecentLogs(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}

// Health godoc
// @Summary      Health check
// @Description  Reports database reachability; unauthenticated
// @Tags         stats
// @Produce      json
// @Success      200 {object} MessageResponse
// @Failure      503 {object} ErrorResponse
// @Router       /health [get]
func (h *StatsHandler) Health(c *gin.Context) {
	if !h.stats.HealthCheck() {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "ok"})
}

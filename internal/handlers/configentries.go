package handlers

import (
	"net/http"

	"festival-bot-backend/internal/database"
	"festival-bot-backend/internal/models"
	"festival-bot-backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ConfigHandler struct {
	store *database.Store
	cfg   *services.ConfigStore
	query *services.AdminQueryService
}

func NewConfigHandler(store *database.Store, cfg *services.ConfigStore, query *services.AdminQueryService) *ConfigHandler {
	return &ConfigHandler{store: store, cfg: cfg, query: query}
}

type UpsertConfigRequest struct {
	Key       string `json:"key" binding:"required,max=100" example:"MAIN_MENU_TEXT"`
	Value     string `json:"value" example:"Выбирай раздел:"`
	ValueType string `json:"value_type" binding:"omitempty,oneof=text int bool json" example:"text"`
}

// List godoc
// @Summary      List config entries
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} ConfigEntry
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/config [get]
func (h *ConfigHandler) List(c *gin.Context) {
	entries, err := h.store.AllConfigEntries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

// Upsert godoc
// @Summary      Create or update a config entry
// @Description  Writes through to the database and patches the live snapshot
// @Tags         config
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpsertConfigRequest true "Config entry"
// @Success      200 {object} MessageResponse
// @Failure      400 {object} ErrorResponse
// @Router       /api/v1/config [put]
func (h *ConfigHandler) Upsert(c *gin.Context) {
	var req UpsertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.ValueType == "" {
		req.ValueType = models.ConfigTypeText
	}

	if err := h.cfg.Set(req.Key, req.Value, req.ValueType); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.query.LogAction(c.GetUint("admin_id"), "upsert_config", 0, req.Key)
	c.JSON(http.StatusOK, MessageResponse{Message: "config saved"})
}

// Refresh godoc
// @Summary      Force a config refresh
// @Description  Reloads the in-memory snapshot from the database immediately
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/config/refresh [post]
func (h *ConfigHandler) Refresh(c *gin.Context) {
	h.cfg.ForceRefresh()
	c.JSON(http.StatusOK, MessageResponse{Message: "config refreshed"})
}

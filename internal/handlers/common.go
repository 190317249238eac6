package handlers

import "festival-bot-backend/internal/models"

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
}

type MessageResponse struct {
	Message string `json:"message" example:"operation successful"`
}

// Type aliases so swag can resolve models in annotations.
type Participant = models.Participant
type SlotDefinition = models.SlotDefinition
type ConfigEntry = models.ConfigEntry
type ScheduledMessage = models.ScheduledMessage

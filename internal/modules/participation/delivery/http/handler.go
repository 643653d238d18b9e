package handler

import (
	"net/http"

	"anoa.com/cfptracker/internal/modules/participation/dto"
	participation "anoa.com/cfptracker/internal/modules/participation/service"
	"anoa.com/cfptracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type ParticipationHandler struct {
	service participation.ParticipationService
}

func NewParticipationHandler(service participation.ParticipationService) *ParticipationHandler {
	return &ParticipationHandler{service: service}
}

func (h *ParticipationHandler) List(c *gin.Context) {
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ListByEvent(c.Request.Context(), eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *ParticipationHandler) Set(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.SetParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Set(c.Request.Context(), eventID, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ParticipationHandler) Remove(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Remove(c.Request.Context(), eventID, userID); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "participation removed"})
}

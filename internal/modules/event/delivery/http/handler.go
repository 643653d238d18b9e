package handler

import (
	"net/http"
	"strings"

	"anoa.com/cfptracker/internal/modules/event/dto"
	event "anoa.com/cfptracker/internal/modules/event/service"
	"anoa.com/cfptracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type EventHandler struct {
	service event.EventService
}

func NewEventHandler(service event.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateEvent(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *EventHandler) GetEvents(c *gin.Context) {
	var query dto.EventFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.GetEvents(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EventHandler) SearchEvents(c *gin.Context) {
	var query dto.EventFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}
	if strings.TrimSpace(query.Search) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	res, err := h.service.GetEvents(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateEvent(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteEvent(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "event deleted successfully"})
}

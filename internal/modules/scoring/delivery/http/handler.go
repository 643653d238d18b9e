package handler

import (
	"net/http"

	"anoa.com/cfptracker/internal/modules/scoring/dto"
	scoring "anoa.com/cfptracker/internal/modules/scoring/service"
	"anoa.com/cfptracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type ScoringHandler struct {
	service scoring.ScoringService
}

func NewScoringHandler(service scoring.ScoringService) *ScoringHandler {
	return &ScoringHandler{service: service}
}

func (h *ScoringHandler) ListCategories(c *gin.Context) {
	res, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ScoringHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateCategory(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *ScoringHandler) UpdateCategory(c *gin.Context) {
	id, err := response.ParamUUID(c, "category_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateCategory(c.Request.Context(), id, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ScoringHandler) DeleteCategory(c *gin.Context) {
	id, err := response.ParamUUID(c, "category_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "scoring category deleted successfully"})
}

func (h *ScoringHandler) GetThreshold(c *gin.Context) {
	threshold, err := h.service.GetThreshold(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threshold": threshold})
}

func (h *ScoringHandler) UpdateThreshold(c *gin.Context) {
	var req dto.ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	threshold, err := h.service.UpdateThreshold(c.Request.Context(), *req.Threshold)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"threshold": threshold})
}

func (h *ScoringHandler) GetEventScore(c *gin.Context) {
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetEventScore(c.Request.Context(), eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ScoringHandler) ScoreEvent(c *gin.Context) {
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	categoryID, err := response.ParamUUID(c, "category_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.ScoreEvent(c.Request.Context(), eventID, categoryID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ScoringHandler) SaveScores(c *gin.Context) {
	eventID, err := response.ParamUUID(c, "event_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.SaveScores(c.Request.Context(), eventID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ScoringHandler) Rankings(c *gin.Context) {
	res, err := h.service.Rankings(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": res})
}

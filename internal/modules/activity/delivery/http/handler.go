package handler

import (
	"errors"
	"net/http"
	"strconv"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/activity/dto"
	activity "anoa.com/cfptracker/internal/modules/activity/service"
	commonDto "anoa.com/cfptracker/pkg/dto"
	"anoa.com/cfptracker/pkg/ratelimiter"
	"anoa.com/cfptracker/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ActivityHandler struct {
	service activity.ActivityService
}

func NewActivityHandler(service activity.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) CreateComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateComment(c.Request.Context(), userID, req)
	if err != nil {
		var rateErr *ratelimiter.RateLimitError
		if errors.As(err, &rateErr) {
			c.Header("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *ActivityHandler) UpdateComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "activity_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateComment(c.Request.Context(), id, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *ActivityHandler) DeleteComment(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "activity_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteComment(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

func (h *ActivityHandler) Feed(c *gin.Context) {
	var query commonDto.PaginationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.Feed(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// ListByTarget serves the activity thread of the parent named by param.
func (h *ActivityHandler) ListByTarget(kind entity.TargetKind, param string) gin.HandlerFunc {
	build := map[entity.TargetKind]func(uuid.UUID) entity.ActivityTarget{
		entity.TargetProposal: entity.ProposalTarget,
		entity.TargetEvent:    entity.EventTarget,
		entity.TargetTalk:     entity.TalkTarget,
	}[kind]

	return func(c *gin.Context) {
		id, err := response.ParamUUID(c, param)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		res, err := h.service.ListByTarget(c.Request.Context(), build(id))
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": res})
	}
}

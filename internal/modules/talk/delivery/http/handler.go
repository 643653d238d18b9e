package handler

import (
	"net/http"

	"anoa.com/cfptracker/internal/modules/talk/dto"
	talk "anoa.com/cfptracker/internal/modules/talk/service"
	"anoa.com/cfptracker/pkg/response"
	"github.com/gin-gonic/gin"
)

type TalkHandler struct {
	service talk.TalkService
}

func NewTalkHandler(service talk.TalkService) *TalkHandler {
	return &TalkHandler{service: service}
}

func (h *TalkHandler) CreateTalk(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.CreateTalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.CreateTalk(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *TalkHandler) GetTalks(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.TalkFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.GetTalks(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TalkHandler) GetTalk(c *gin.Context) {
	id, err := response.ParamUUID(c, "talk_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.GetTalk(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TalkHandler) UpdateTalk(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "talk_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateTalkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	res, err := h.service.UpdateTalk(c.Request.Context(), id, userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *TalkHandler) DeleteTalk(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "talk_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.DeleteTalk(c.Request.Context(), id, userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "talk deleted successfully"})
}

func (h *TalkHandler) UploadSlides(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := response.ParamUUID(c, "talk_id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	header, err := c.FormFile("slides")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slides file is required"})
		return
	}
	f, err := header.Open()
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer f.Close()

	res, err := h.service.UploadSlides(c.Request.Context(), id, userID, dto.SlidesFile{
		Reader:   f,
		FileName: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

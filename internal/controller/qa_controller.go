package controller

import (
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QAController struct {
	QAService   *service.QAService
	AuthService *service.AuthService
}

func NewQAController(qaService *service.QAService, authService *service.AuthService) *QAController {
	return &QAController{QAService: qaService, AuthService: authService}
}

// AskRequest defines the question payload
// swagger:model AskRequest
type AskRequest struct {
	Question string `json:"question" binding:"required,min=3"`
}

// Ask godoc
// @Summary Ask a study question
// @Description Answers a question grounded in matching indexed content, pitched at the student's grade level
// @Tags qa
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body AskRequest true "the question"
// @Success 200 {object} util.Response{data=service.QAAnswer}
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/qa/ask [post]
func (c *QAController) Ask(ctx *gin.Context) {
	var req AskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.GetUser(util.GetUserFromContext(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	answer, err := c.QAService.Ask(ctx.Request.Context(), user, req.Question)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, answer)
}

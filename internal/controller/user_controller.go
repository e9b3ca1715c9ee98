package controller

import (
	"strconv"

	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UserController struct {
	AuthService *service.AuthService
	EventRepo   *repository.EventRepository
}

func NewUserController(authService *service.AuthService, eventRepo *repository.EventRepository) *UserController {
	return &UserController{AuthService: authService, EventRepo: eventRepo}
}

// UpdateProfile godoc
// @Summary Update the current user's learning profile
// @Description Updates name, grade level, subjects of interest or learning style. Omitted fields are left unchanged.
// @Tags user
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body service.ProfileUpdate true "fields to update"
// @Success 200 {object} util.Response{data=model.StudentProfile}
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	user, err := c.AuthService.UpdateProfile(ctx.Request.Context(), claims, req)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, user.Profile())
}

// Events godoc
// @Summary The current user's learning activity history
// @Description Paged audit trail of plan generations, activity updates and questions asked
// @Tags user
// @Produce  json
// @Security BearerAuth
// @Param   page query int false "page number (default 1)"
// @Param   limit query int false "page size (default 20, max 100)"
// @Success 200 {object} util.Response{data=object}
// @Router /api/user/events [get]
func (c *UserController) Events(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	claims := util.GetUserFromContext(ctx)
	events, total, err := c.EventRepo.ListByUser(claims.UserID, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"events": events,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

package controller

import (
	"time"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PlanController struct {
	PlanService *service.PlanService
	AuthService *service.AuthService
	Tracker     service.TaskTracker
}

func NewPlanController(planService *service.PlanService, authService *service.AuthService, tracker service.TaskTracker) *PlanController {
	return &PlanController{
		PlanService: planService,
		AuthService: authService,
		Tracker:     tracker,
	}
}

// CreatePlanRequest defines the plan generation payload
// swagger:model CreatePlanRequest
type CreatePlanRequest struct {
	Subject        string `json:"subject" binding:"required"`
	LearningPeriod string `json:"learning_period"`
}

// Create godoc
// @Summary Generate a learning plan
// @Description Retrieves matching content, asks the model for a draft and schedules it into a dated plan. Runs synchronously.
// @Tags plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreatePlanRequest true "subject and period"
// @Success 200 {object} util.Response{data=model.LearningPlan}
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response
// @Router /api/learning-plans [post]
func (c *PlanController) Create(ctx *gin.Context) {
	var req CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.GetUser(util.GetUserFromContext(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	plan, err := c.PlanService.CreatePlan(ctx.Request.Context(), user, req.Subject, model.LearningPeriod(req.LearningPeriod))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, plan)
}

// CreateAsync godoc
// @Summary Generate a learning plan in the background
// @Description Queues plan generation and returns a task id to poll on /tasks/status/{taskId}
// @Tags plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body CreatePlanRequest true "subject and period"
// @Success 202 {object} util.Response{data=object}
// @Failure 400 {object} util.Response
// @Router /api/learning-plans/async [post]
func (c *PlanController) CreateAsync(ctx *gin.Context) {
	var req CreatePlanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.GetUser(util.GetUserFromContext(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	period := model.LearningPeriod(req.LearningPeriod)
	if req.LearningPeriod != "" && !period.Valid() {
		util.BadRequest(ctx, "unknown learning period")
		return
	}

	taskID, err := c.PlanService.CreatePlanAsync(user, req.Subject, period, c.Tracker)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Accepted(ctx, gin.H{"task_id": taskID})
}

// List godoc
// @Summary List the current user's learning plans
// @Tags plans
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.LearningPlan}
// @Router /api/learning-plans [get]
func (c *PlanController) List(ctx *gin.Context) {
	plans, err := c.PlanService.ListPlans(ctx.Request.Context(), util.GetUserFromContext(ctx))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// Get godoc
// @Summary Fetch one learning plan
// @Tags plans
// @Produce  json
// @Security BearerAuth
// @Param   planId path string true "plan id"
// @Success 200 {object} util.Response{data=model.LearningPlan}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/learning-plans/{planId} [get]
func (c *PlanController) Get(ctx *gin.Context) {
	plan, err := c.PlanService.GetPlan(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("planId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, plan)
}

// Delete godoc
// @Summary Delete a learning plan
// @Tags plans
// @Produce  json
// @Security BearerAuth
// @Param   planId path string true "plan id"
// @Success 200 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/learning-plans/{planId} [delete]
func (c *PlanController) Delete(ctx *gin.Context) {
	if err := c.PlanService.DeletePlan(ctx.Request.Context(), util.GetUserFromContext(ctx), ctx.Param("planId")); err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": true})
}

// UpdateActivityRequest defines the activity status payload
// swagger:model UpdateActivityRequest
type UpdateActivityRequest struct {
	Status      string     `json:"status" binding:"required,oneof=not_started in_progress completed"`
	CompletedAt *time.Time `json:"completed_at"`
}

// UpdateActivity godoc
// @Summary Update one activity's status
// @Description Sets the activity status and recomputes the plan's progress percentage
// @Tags plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   planId path string true "plan id"
// @Param   activityId path string true "activity id"
// @Param   body body UpdateActivityRequest true "new status"
// @Success 200 {object} util.Response{data=model.LearningPlan}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/learning-plans/{planId}/activities/{activityId} [put]
func (c *PlanController) UpdateActivity(ctx *gin.Context) {
	var req UpdateActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	plan, err := c.PlanService.UpdateActivityStatus(
		ctx.Request.Context(),
		util.GetUserFromContext(ctx),
		ctx.Param("planId"),
		ctx.Param("activityId"),
		model.ActivityStatus(req.Status),
		req.CompletedAt,
	)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, plan)
}

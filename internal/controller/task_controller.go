package controller

import (
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TaskController struct {
	Tracker service.TaskTracker
}

func NewTaskController(tracker service.TaskTracker) *TaskController {
	return &TaskController{Tracker: tracker}
}

// Status godoc
// @Summary Poll a background task
// @Description Returns task progress and, once completed, the result. Only the task owner or an admin may read it.
// @Tags tasks
// @Produce  json
// @Security BearerAuth
// @Param   taskId path string true "task id"
// @Success 200 {object} util.Response{data=model.AsyncTask}
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/tasks/status/{taskId} [get]
func (c *TaskController) Status(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	task, err := c.Tracker.Get(ctx.Request.Context(), ctx.Param("taskId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	if task.OwnerID != claims.UserID && !claims.IsAdmin() {
		util.Forbidden(ctx)
		return
	}

	util.Success(ctx, task)
}

// List godoc
// @Summary List the current user's background tasks
// @Tags tasks
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.AsyncTask}
// @Router /api/tasks [get]
func (c *TaskController) List(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	tasks, err := c.Tracker.ListByOwner(ctx.Request.Context(), claims.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, tasks)
}

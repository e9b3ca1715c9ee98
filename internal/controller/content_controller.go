package controller

import (
	"strconv"

	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ContentController struct {
	ContentService *service.ContentService
}

func NewContentController(contentService *service.ContentService) *ContentController {
	return &ContentController{ContentService: contentService}
}

// Search godoc
// @Summary Search educational content
// @Description Full-text search over the content index, optionally filtered by subject
// @Tags content
// @Produce  json
// @Security BearerAuth
// @Param   query query string true "search text"
// @Param   subject query string false "subject filter"
// @Param   topic query string false "topic filter"
// @Param   top query int false "maximum results (default 20, max 50)"
// @Success 200 {object} util.Response{data=[]model.ContentItem}
// @Failure 400 {object} util.Response
// @Router /api/content/search [get]
func (c *ContentController) Search(ctx *gin.Context) {
	queryText := ctx.Query("query")
	if queryText == "" {
		util.BadRequest(ctx, "query parameter is required")
		return
	}

	top, _ := strconv.Atoi(ctx.DefaultQuery("top", "0"))

	items, err := c.ContentService.Search(ctx.Request.Context(), queryText, ctx.Query("subject"), ctx.Query("topic"), top)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, items)
}

// GetByID godoc
// @Summary Fetch one content item
// @Tags content
// @Produce  json
// @Security BearerAuth
// @Param   contentId path string true "content document id"
// @Success 200 {object} util.Response{data=model.ContentItem}
// @Failure 404 {object} util.Response
// @Router /api/content/{contentId} [get]
func (c *ContentController) GetByID(ctx *gin.Context) {
	item, err := c.ContentService.GetByID(ctx.Request.Context(), ctx.Param("contentId"))
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, item)
}

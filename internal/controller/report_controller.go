package controller

import (
	"strconv"

	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ReportController struct {
	ReportService *service.ReportService
}

func NewReportController(reportService *service.ReportService) *ReportController {
	return &ReportController{ReportService: reportService}
}

// SynthesizeRequest defines the report synthesis payload
// swagger:model SynthesizeRequest
type SynthesizeRequest struct {
	Count      int    `json:"count"`
	GradeLevel *int   `json:"grade_level"`
	Subject    string `json:"subject"`
}

// Synthesize godoc
// @Summary Synthesize demo student reports
// @Description Generates templated reports with cover images, HTML and PDF renditions. Teacher and admin only.
// @Tags reports
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param   body body SynthesizeRequest true "batch options"
// @Success 201 {object} util.Response{data=[]model.StudentReport}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Router /api/reports/synthesize [post]
func (c *ReportController) Synthesize(ctx *gin.Context) {
	var req SynthesizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	reports, err := c.ReportService.Synthesize(ctx.Request.Context(), claims.UserID, service.SynthesizeOptions{
		Count:      req.Count,
		GradeLevel: req.GradeLevel,
		Subject:    req.Subject,
	})
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Created(ctx, reports)
}

// List godoc
// @Summary List synthesized reports
// @Tags reports
// @Produce  json
// @Security BearerAuth
// @Param   subject query string false "subject filter"
// @Param   grade query int false "exact grade-level filter"
// @Param   top query int false "maximum results"
// @Success 200 {object} util.Response{data=[]model.StudentReport}
// @Router /api/reports [get]
func (c *ReportController) List(ctx *gin.Context) {
	top, _ := strconv.Atoi(ctx.DefaultQuery("top", "0"))

	var grade *int
	if g, err := strconv.Atoi(ctx.Query("grade")); err == nil {
		grade = &g
	}

	reports, err := c.ReportService.ListReports(ctx.Request.Context(), ctx.Query("subject"), grade, top)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}

	util.Success(ctx, reports)
}

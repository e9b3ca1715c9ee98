package repository

import (
	"context"
	"encoding/json"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
)

// ReportRepository stores synthesized student reports in the reports index.
type ReportRepository struct {
	Client *search.Client
}

func NewReportRepository(client *search.Client) *ReportRepository {
	return &ReportRepository{Client: client}
}

func (r *ReportRepository) Save(ctx context.Context, report *model.StudentReport) error {
	if err := r.Client.UploadDocuments(ctx, util.IndexReports, report); err != nil {
		return util.NewUpstreamError("search", "report upsert", err)
	}
	return nil
}

func (r *ReportRepository) List(ctx context.Context, subject string, grade *int, top int) ([]model.StudentReport, error) {
	q := search.Query{OrderBy: "created_at desc", Top: top}

	var clauses []string
	if subject != "" {
		clauses = append(clauses, search.Eq("subject", subject))
	}
	if grade != nil {
		clauses = append(clauses, search.EqInt("grade_level", *grade))
	}
	q.Filter = search.And(clauses...)

	raw, err := r.Client.Search(ctx, util.IndexReports, q)
	if err != nil {
		return nil, util.NewUpstreamError("search", "report list", err)
	}

	reports := make([]model.StudentReport, 0, len(raw))
	for _, doc := range raw {
		var report model.StudentReport
		if err := json.Unmarshal(doc, &report); err != nil {
			logger.Log.Warn("skipping malformed report document", zap.Error(err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}

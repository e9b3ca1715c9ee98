package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
)

// PlanRepository persists learning plans as documents in the plans index.
type PlanRepository struct {
	Client *search.Client
}

func NewPlanRepository(client *search.Client) *PlanRepository {
	return &PlanRepository{Client: client}
}

// Save merge-or-uploads the plan document. Failure is logged and reported
// as false, never as an error to the route layer.
func (r *PlanRepository) Save(ctx context.Context, plan *model.LearningPlan) bool {
	plan.UpdatedAt = time.Now()
	if err := r.Client.UploadDocuments(ctx, util.IndexPlans, plan); err != nil {
		logger.Log.Error("failed to save learning plan",
			zap.String("plan_id", plan.ID), zap.Error(err))
		return false
	}
	return true
}

func (r *PlanRepository) GetByID(ctx context.Context, planID string) (*model.LearningPlan, error) {
	var plan model.LearningPlan
	if err := r.Client.GetDocument(ctx, util.IndexPlans, planID, &plan); err != nil {
		if errors.Is(err, search.ErrDocumentNotFound) {
			return nil, util.ErrNotFound
		}
		return nil, util.NewUpstreamError("search", "plan lookup", err)
	}
	return &plan, nil
}

// ListByStudent returns the student's plans, newest first.
func (r *PlanRepository) ListByStudent(ctx context.Context, studentID string) ([]model.LearningPlan, error) {
	raw, err := r.Client.Search(ctx, util.IndexPlans, search.Query{
		Filter:  search.Eq("student_id", studentID),
		OrderBy: "created_at desc",
		Top:     100,
	})
	if err != nil {
		return nil, util.NewUpstreamError("search", "plan list", err)
	}

	plans := make([]model.LearningPlan, 0, len(raw))
	for _, doc := range raw {
		var plan model.LearningPlan
		if err := json.Unmarshal(doc, &plan); err != nil {
			logger.Log.Warn("skipping malformed plan document", zap.Error(err))
			continue
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *PlanRepository) Delete(ctx context.Context, planID string) error {
	if err := r.Client.DeleteDocuments(ctx, util.IndexPlans, planID); err != nil {
		return util.NewUpstreamError("search", "plan delete", err)
	}
	return nil
}

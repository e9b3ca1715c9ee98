package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/util"
	"learning_copilot_backend/pkg/logger"
	"learning_copilot_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// PlanService runs the plan pipeline: retrieve content, prompt the model
// (one 7-day batch per call), schedule the draft activities, persist.
type PlanService struct {
	AI        *ai.Client
	Content   *ContentService
	PlanRepo  *repository.PlanRepository
	EventRepo *repository.EventRepository
	Cfg       *config.Config
}

func NewPlanService(aiClient *ai.Client, content *ContentService, planRepo *repository.PlanRepository, eventRepo *repository.EventRepository, cfg *config.Config) *PlanService {
	return &PlanService{
		AI:        aiClient,
		Content:   content,
		PlanRepo:  planRepo,
		EventRepo: eventRepo,
		Cfg:       cfg,
	}
}

// draftActivity mirrors the JSON shape the model is asked to emit. A
// missing duration stays nil; it is resolved by the scheduler, never
// invented here.
type draftActivity struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes *int   `json:"duration_minutes"`
	Day             int    `json:"day"`
	ContentID       string `json:"content_id"`
	LearningBenefit string `json:"learning_benefit"`
}

type draftPlan struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Topics      []string        `json:"topics"`
	Activities  []draftActivity `json:"activities"`
}

const planSystemPrompt = "You are an educational planning assistant. You design day-by-day personalized learning plans from a student profile and a list of available content. Respond with a single JSON object and nothing else."

func buildPlanPrompt(profile *model.StudentProfile, subject string, content []model.ContentItem, days, limit int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %d-day learning plan for the subject %q.\n\n", days, subject)

	b.WriteString("Student profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", profile.Name)
	if profile.GradeLevel != nil {
		fmt.Fprintf(&b, "- Grade level: %d\n", *profile.GradeLevel)
	}
	if len(profile.Subjects) > 0 {
		fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(profile.Subjects, ", "))
	}
	fmt.Fprintf(&b, "- Learning style: %s\n\n", profile.LearningStyle)

	b.WriteString("Available content (reference items by content_id where possible):\n")
	for i, item := range content {
		if i >= limit {
			break
		}
		fmt.Fprintf(&b, "- content_id=%s title=%q type=%s difficulty=%s", item.ID, item.Title, item.ContentType, item.Difficulty)
		if item.DurationMinutes != nil {
			fmt.Fprintf(&b, " duration_minutes=%d", *item.DurationMinutes)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nReturn a JSON object with keys: title, description, topics (array of strings), "+
		"activities (array). Each activity needs: title, description, day (1-%d), learning_benefit, "+
		"and content_id when it uses one of the items above. Include duration_minutes only when you "+
		"know it from the referenced content; never guess a duration. Spread activities across all days.", days)

	return b.String()
}

// parseDraftPlan decodes the model's response defensively: code fences are
// stripped, missing keys default to empty containers, malformed JSON fails
// the call (retry is the caller's decision).
func parseDraftPlan(raw string) (*draftPlan, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	var draft draftPlan
	if err := json.Unmarshal([]byte(cleaned), &draft); err != nil {
		return nil, fmt.Errorf("malformed plan JSON: %w", err)
	}
	if draft.Topics == nil {
		draft.Topics = []string{}
	}
	if draft.Activities == nil {
		draft.Activities = []draftActivity{}
	}
	return &draft, nil
}

// generateBatch asks the model for one plan batch of up to 7 days.
func (s *PlanService) generateBatch(ctx context.Context, profile *model.StudentProfile, subject string, content []model.ContentItem, days int) (*draftPlan, error) {
	prompt := buildPlanPrompt(profile, subject, content, days, s.Cfg.Plan.PromptContentLimit)

	raw, err := s.AI.JSONCompletion(ctx, planSystemPrompt, prompt)
	if err != nil {
		return nil, util.NewUpstreamError("ai", "plan generation", err)
	}

	draft, err := parseDraftPlan(raw)
	if err != nil {
		logger.Log.Error("model returned malformed plan JSON",
			zap.String("subject", subject), zap.Error(err))
		return nil, err
	}
	return draft, nil
}

// CreatePlan runs the whole pipeline for one student and subject. Periods
// longer than a week are generated in 7-day batches whose day numbers are
// shifted by 7*week before concatenation.
func (s *PlanService) CreatePlan(ctx context.Context, user *model.User, subject string, period model.LearningPeriod) (*model.LearningPlan, error) {
	if period == "" {
		period = model.PeriodOneWeek
	}
	if !period.Valid() {
		return nil, util.ErrInvalidPeriod
	}
	days := period.Days()
	profile := user.Profile()
	start := time.Now()

	content := s.Content.RetrieveForPlan(ctx, profile, subject)

	plan := &model.LearningPlan{
		ID:        model.GenerateUUID(),
		StudentID: profile.ID,
		Subject:   subject,
		CreatedAt: start,
		UpdatedAt: start,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, days-1),
		Status:    model.PlanActive,
		Topics:    []string{},
		Metadata: model.PlanMetadata{
			LearningPeriod: period,
			PeriodDays:     days,
		},
	}

	weeks := (days + 6) / 7
	for week := 0; week < weeks; week++ {
		batchDays := days - week*7
		if batchDays > 7 {
			batchDays = 7
		}

		draft, err := s.generateBatch(ctx, profile, subject, content, batchDays)
		if err != nil {
			monitoring.PlanGenerationCounter.WithLabelValues("error").Inc()
			s.recordEvent(user.ID, model.EventPlanGenerated, plan.ID, subject, err.Error(), false, start)
			return nil, err
		}

		if week == 0 {
			plan.Title = draft.Title
			plan.Description = draft.Description
			plan.Topics = draft.Topics
		}
		for _, da := range draft.Activities {
			plan.Activities = append(plan.Activities, model.LearningActivity{
				ID:              model.GenerateUUID(),
				Title:           da.Title,
				Description:     da.Description,
				ContentID:       da.ContentID,
				DurationMinutes: da.DurationMinutes,
				Day:             da.Day + 7*week,
				Status:          model.ActivityNotStarted,
				LearningBenefit: da.LearningBenefit,
			})
		}
	}

	if plan.Title == "" {
		plan.Title = fmt.Sprintf("%s learning plan for %s", subject, profile.Name)
	}

	invalid := ScheduleActivities(plan, content, days)
	if invalid > 0 {
		// Returned anyway, flagged rather than silently passing.
		plan.Status = model.PlanIncomplete
		logger.Log.Error(util.ErrPlanIncomplete.Error(),
			zap.String("plan_id", plan.ID), zap.Int("invalid_activities", invalid))
	}

	if !s.PlanRepo.Save(ctx, plan) {
		monitoring.UpstreamErrorCounter.WithLabelValues("search").Inc()
	}

	monitoring.PlanGenerationCounter.WithLabelValues(string(plan.Status)).Inc()
	monitoring.PlanGenerationDuration.Observe(time.Since(start).Seconds())
	s.recordEvent(user.ID, model.EventPlanGenerated, plan.ID, subject, fmt.Sprintf("%d activities over %d days", len(plan.Activities), days), true, start)

	return plan, nil
}

// CreatePlanAsync runs CreatePlan in the background and reports progress
// through the tracker. The returned id is polled via /tasks/status.
func (s *PlanService) CreatePlanAsync(user *model.User, subject string, period model.LearningPeriod, tracker TaskTracker) (string, error) {
	task, err := tracker.Create(context.Background(), user.ID, "learning_plan")
	if err != nil {
		return "", err
	}

	timeout := time.Duration(s.Cfg.Timeout.PlanCreationSeconds) * time.Second

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		updateTask(tracker, task.TaskID, model.TaskProcessing, 10, "retrieving content")

		plan, err := s.CreatePlan(ctx, user, subject, period)
		if err != nil {
			msg := err.Error()
			status := model.TaskFailed
			_, _ = tracker.Update(context.Background(), task.TaskID, model.TaskUpdate{
				Status: &status,
				Error:  &msg,
			})
			return
		}

		status := model.TaskCompleted
		progress := 100
		msg := "plan ready"
		if plan.Status == model.PlanIncomplete {
			msg = util.ErrPlanIncomplete.Error()
		}
		_, _ = tracker.Update(context.Background(), task.TaskID, model.TaskUpdate{
			Status:   &status,
			Progress: &progress,
			Message:  &msg,
			Result:   plan,
		})
	}()

	return task.TaskID, nil
}

func updateTask(tracker TaskTracker, id string, status model.TaskStatus, progress int, message string) {
	_, _ = tracker.Update(context.Background(), id, model.TaskUpdate{
		Status:   &status,
		Progress: &progress,
		Message:  &message,
	})
}

// GetPlan returns a plan the principal is allowed to see.
func (s *PlanService) GetPlan(ctx context.Context, claims *util.Claims, planID string) (*model.LearningPlan, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(claims, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context, claims *util.Claims) ([]model.LearningPlan, error) {
	return s.PlanRepo.ListByStudent(ctx, model.GenerateUserDocID(claims.UserID))
}

func (s *PlanService) DeletePlan(ctx context.Context, claims *util.Claims, planID string) error {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if err := s.authorize(claims, plan); err != nil {
		return err
	}
	if err := s.PlanRepo.Delete(ctx, planID); err != nil {
		return err
	}
	s.recordEvent(claims.UserID, model.EventPlanDeleted, planID, plan.Subject, "", true, time.Now())
	return nil
}

// UpdateActivityStatus mutates one activity's status, recomputes the
// plan's progress and persists the document.
func (s *PlanService) UpdateActivityStatus(ctx context.Context, claims *util.Claims, planID, activityID string, status model.ActivityStatus, completedAt *time.Time) (*model.LearningPlan, error) {
	plan, err := s.PlanRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(claims, plan); err != nil {
		return nil, err
	}

	activity := plan.FindActivity(activityID)
	if activity == nil {
		return nil, util.ErrNotFound
	}

	activity.Status = status
	switch status {
	case model.ActivityCompleted:
		if completedAt != nil {
			activity.CompletedAt = completedAt
		} else {
			now := time.Now()
			activity.CompletedAt = &now
		}
	default:
		activity.CompletedAt = nil
	}

	plan.RecomputeProgress()

	if !s.PlanRepo.Save(ctx, plan) {
		return nil, util.NewUpstreamError("search", "plan update", fmt.Errorf("save returned false"))
	}

	s.recordEvent(claims.UserID, model.EventActivityUpdated, planID, plan.Subject, string(status), true, time.Now())
	return plan, nil
}

func (s *PlanService) authorize(claims *util.Claims, plan *model.LearningPlan) error {
	if plan.StudentID != model.GenerateUserDocID(claims.UserID) && !claims.IsAdmin() {
		return util.ErrForbidden
	}
	return nil
}

func (s *PlanService) recordEvent(userID uint, eventType model.EventType, planID, subject, detail string, ok bool, start time.Time) {
	if s.EventRepo == nil {
		return
	}
	event := &model.LearningEvent{
		UserID:    userID,
		EventType: eventType,
		PlanID:    planID,
		Subject:   subject,
		Detail:    detail,
		Duration:  int(time.Since(start).Milliseconds()),
		Succeeded: ok,
	}
	if err := s.EventRepo.Create(event); err != nil {
		logger.Log.Warn("failed to record learning event", zap.Error(err))
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraftPlanPlainJSON(t *testing.T) {
	draft, err := parseDraftPlan(`{
		"title": "Fractions week",
		"description": "Seven days of fractions",
		"topics": ["fractions", "decimals"],
		"activities": [
			{"title": "Intro", "day": 1, "content_id": "c1"},
			{"title": "Quiz", "day": 2, "duration_minutes": 10}
		]
	}`)
	require.NoError(t, err)

	assert.Equal(t, "Fractions week", draft.Title)
	assert.Len(t, draft.Topics, 2)
	require.Len(t, draft.Activities, 2)
	assert.Equal(t, "c1", draft.Activities[0].ContentID)
	assert.Nil(t, draft.Activities[0].DurationMinutes)
	require.NotNil(t, draft.Activities[1].DurationMinutes)
	assert.Equal(t, 10, *draft.Activities[1].DurationMinutes)
}

func TestParseDraftPlanStripsCodeFences(t *testing.T) {
	raw := "```json\n{\"title\": \"Fenced\", \"activities\": []}\n```"
	draft, err := parseDraftPlan(raw)
	require.NoError(t, err)
	assert.Equal(t, "Fenced", draft.Title)
}

func TestParseDraftPlanDefaultsMissingKeys(t *testing.T) {
	draft, err := parseDraftPlan(`{"title": "Sparse"}`)
	require.NoError(t, err)
	assert.NotNil(t, draft.Topics)
	assert.NotNil(t, draft.Activities)
	assert.Empty(t, draft.Activities)
}

func TestParseDraftPlanRejectsMalformedJSON(t *testing.T) {
	_, err := parseDraftPlan(`this is not json at all`)
	assert.Error(t, err)
}

func TestBuildPlanPromptHonorsContentLimit(t *testing.T) {
	profile := &model.StudentProfile{Name: "Sam", LearningStyle: model.Visual}
	content := []model.ContentItem{
		{ID: "c1", Title: "A"},
		{ID: "c2", Title: "B"},
		{ID: "c3", Title: "C"},
	}

	prompt := buildPlanPrompt(profile, "math", content, 7, 2)

	assert.Contains(t, prompt, "content_id=c1")
	assert.Contains(t, prompt, "content_id=c2")
	assert.NotContains(t, prompt, "content_id=c3")
	assert.Contains(t, prompt, "never guess a duration")
}

// fakeBackends stands up httptest servers impersonating the search index
// and the model service for pipeline tests.
type fakeBackends struct {
	searchSrv *httptest.Server
	aiSrv     *httptest.Server

	mu          sync.Mutex
	chatCalls   int
	savedPlans  []json.RawMessage
	contentDocs []model.ContentItem
	draftFor    func(call int) string
}

func newFakeBackends(t *testing.T) *fakeBackends {
	f := &fakeBackends{
		contentDocs: []model.ContentItem{
			{ID: "c1", Title: "Intro lesson", Subject: "math", URL: "https://c.example/c1", DurationMinutes: util.IntPtr(15)},
			{ID: "c2", Title: "Deep dive video", Subject: "math", URL: "https://c.example/c2", DurationMinutes: util.IntPtr(25)},
			{ID: "c3", Title: "Practice quiz", Subject: "math", URL: "https://c.example/c3", DurationMinutes: util.IntPtr(10)},
		},
	}

	f.searchSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/indexes/educational-content/docs/search"):
			docs := make([]json.RawMessage, 0, len(f.contentDocs))
			for _, item := range f.contentDocs {
				data, _ := json.Marshal(item)
				docs = append(docs, data)
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"value": docs})
		case strings.Contains(r.URL.Path, "/indexes/learning-plans/docs/index"):
			var body struct {
				Value []json.RawMessage `json:"value"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.mu.Lock()
			f.savedPlans = append(f.savedPlans, body.Value...)
			f.mu.Unlock()
			json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
		default:
			json.NewEncoder(w).Encode(map[string]interface{}{"value": []interface{}{}})
		}
	}))
	t.Cleanup(f.searchSrv.Close)

	f.aiSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.chatCalls++
		call := f.chatCalls
		f.mu.Unlock()

		draft := f.draftFor(call)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": draft}},
			},
		})
	}))
	t.Cleanup(f.aiSrv.Close)

	return f
}

func (f *fakeBackends) planService() *PlanService {
	cfg := &config.Config{}
	cfg.Search = config.SearchConfig{Endpoint: f.searchSrv.URL, APIVersion: "2023-11-01"}
	cfg.AI = config.AIConfig{Endpoint: f.aiSrv.URL, APIVersion: "2024-02-01", ChatDeployment: "gpt-test", Temperature: 0.2}
	cfg.Plan = config.PlanConfig{RetrievalCount: 10, PromptContentLimit: 10}

	client := search.NewClient(cfg.Search)
	contentRepo := repository.NewContentRepository(client)
	planRepo := repository.NewPlanRepository(client)

	return NewPlanService(
		ai.NewClient(cfg.AI),
		NewContentService(contentRepo, cfg, nil),
		planRepo,
		nil,
		cfg,
	)
}

func weekDraft(title string) string {
	activities := make([]string, 0, 7)
	for day := 1; day <= 7; day++ {
		activities = append(activities, fmt.Sprintf(
			`{"title": "Day %d work", "day": %d, "content_id": "c%d"}`, day, day, (day%3)+1))
	}
	return fmt.Sprintf(`{"title": %q, "description": "desc", "topics": ["t1"], "activities": [%s]}`,
		title, strings.Join(activities, ","))
}

func TestCreatePlanOneWeek(t *testing.T) {
	f := newFakeBackends(t)
	f.draftFor = func(int) string { return weekDraft("Week one") }
	svc := f.planService()

	user := &model.User{Name: "Sam", LearningStyle: model.Mixed}
	user.ID = 42

	plan, err := svc.CreatePlan(context.Background(), user, "math", model.PeriodOneWeek)
	require.NoError(t, err)

	assert.Equal(t, "user-42", plan.StudentID)
	assert.Equal(t, "Week one", plan.Title)
	assert.Equal(t, model.PlanActive, plan.Status)
	assert.Equal(t, 7, plan.Metadata.PeriodDays)

	covered := map[int]bool{}
	for _, act := range plan.Activities {
		assert.True(t, act.HasContentRef())
		require.NotNil(t, act.DurationMinutes, "activity %q lost its duration", act.Title)
		covered[act.Day] = true
	}
	for day := 1; day <= 7; day++ {
		assert.True(t, covered[day])
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.chatCalls)
	assert.Len(t, f.savedPlans, 1, "plan must be persisted")
}

func TestCreatePlanTwoWeeksRenumbersBatches(t *testing.T) {
	f := newFakeBackends(t)
	f.draftFor = func(call int) string { return weekDraft(fmt.Sprintf("Week %d", call)) }
	svc := f.planService()

	user := &model.User{Name: "Sam"}
	user.ID = 7

	plan, err := svc.CreatePlan(context.Background(), user, "math", model.PeriodTwoWeeks)
	require.NoError(t, err)

	f.mu.Lock()
	calls := f.chatCalls
	f.mu.Unlock()
	assert.Equal(t, 2, calls, "two weeks means two generation batches")

	// Title and topics come from the first batch only.
	assert.Equal(t, "Week 1", plan.Title)

	days := map[int]int{}
	for _, act := range plan.Activities {
		days[act.Day]++
	}
	for day := 1; day <= 14; day++ {
		assert.Positive(t, days[day], "day %d missing after renumbering", day)
	}
	assert.Equal(t, 14, plan.DayCount())
}

func TestCreatePlanRejectsUnknownPeriod(t *testing.T) {
	f := newFakeBackends(t)
	f.draftFor = func(int) string { return weekDraft("unused") }
	svc := f.planService()

	user := &model.User{Name: "Sam"}
	user.ID = 1

	_, err := svc.CreatePlan(context.Background(), user, "math", model.LearningPeriod("fortnight"))
	assert.ErrorIs(t, err, util.ErrInvalidPeriod)
}

func TestCreatePlanMalformedModelOutput(t *testing.T) {
	f := newFakeBackends(t)
	f.draftFor = func(int) string { return "certainly! here is your plan:" }
	svc := f.planService()

	user := &model.User{Name: "Sam"}
	user.ID = 1

	_, err := svc.CreatePlan(context.Background(), user, "math", model.PeriodOneWeek)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Empty(t, f.savedPlans, "failed generation must not persist a plan")
}

func TestAuthorizeOwnerAndAdmin(t *testing.T) {
	svc := &PlanService{}
	plan := &model.LearningPlan{StudentID: "user-5"}

	owner := &util.Claims{UserID: 5, Role: model.Student}
	assert.NoError(t, svc.authorize(owner, plan))

	stranger := &util.Claims{UserID: 6, Role: model.Student}
	assert.ErrorIs(t, svc.authorize(stranger, plan), util.ErrForbidden)

	admin := &util.Claims{UserID: 6, Role: model.Admin}
	assert.NoError(t, svc.authorize(admin, plan))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLearningPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodOneWeek.Days())
	assert.Equal(t, 14, PeriodTwoWeeks.Days())
	assert.Equal(t, 30, PeriodOneMonth.Days())
	assert.Equal(t, 60, PeriodTwoMonths.Days())
	assert.Equal(t, 90, PeriodSchoolTerm.Days())

	// Unknown codes fall back to a week.
	assert.Equal(t, 7, LearningPeriod("fortnight").Days())
	assert.False(t, LearningPeriod("fortnight").Valid())
}

func TestRecomputeProgress(t *testing.T) {
	plan := &LearningPlan{
		Status: PlanActive,
		Activities: []LearningActivity{
			{ID: "a1", Status: ActivityCompleted},
			{ID: "a2", Status: ActivityInProgress},
			{ID: "a3", Status: ActivityNotStarted},
			{ID: "a4", Status: ActivityNotStarted},
		},
	}

	plan.RecomputeProgress()
	assert.InDelta(t, 25.0, plan.Progress, 0.001)
	assert.Equal(t, PlanActive, plan.Status)

	for i := range plan.Activities {
		plan.Activities[i].Status = ActivityCompleted
	}
	plan.RecomputeProgress()
	assert.InDelta(t, 100.0, plan.Progress, 0.001)
	assert.Equal(t, PlanCompleted, plan.Status)
}

func TestRecomputeProgressEmptyPlan(t *testing.T) {
	plan := &LearningPlan{Status: PlanActive}
	plan.RecomputeProgress()
	assert.Zero(t, plan.Progress)
	assert.Equal(t, PlanActive, plan.Status)
}

func TestDayCountFallsBackToMaxDay(t *testing.T) {
	plan := &LearningPlan{
		Activities: []LearningActivity{{Day: 3}, {Day: 9}, {Day: 1}},
	}
	assert.Equal(t, 9, plan.DayCount())

	plan.Metadata.PeriodDays = 14
	assert.Equal(t, 14, plan.DayCount())
}

func TestGenerateUserDocID(t *testing.T) {
	assert.Equal(t, "user-42", GenerateUserDocID(42))
}

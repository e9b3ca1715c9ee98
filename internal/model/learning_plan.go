package model

import (
	"time"
)

type ActivityStatus string

const (
	ActivityNotStarted ActivityStatus = "not_started"
	ActivityInProgress ActivityStatus = "in_progress"
	ActivityCompleted  ActivityStatus = "completed"
)

type PlanStatus string

const (
	PlanActive     PlanStatus = "active"
	PlanCompleted  PlanStatus = "completed"
	PlanIncomplete PlanStatus = "incomplete"
	PlanArchived   PlanStatus = "archived"
)

// LearningPeriod is a named duration mapped to an integer day count.
type LearningPeriod string

const (
	PeriodOneWeek    LearningPeriod = "one_week"
	PeriodTwoWeeks   LearningPeriod = "two_weeks"
	PeriodOneMonth   LearningPeriod = "one_month"
	PeriodTwoMonths  LearningPeriod = "two_months"
	PeriodSchoolTerm LearningPeriod = "school_term"
)

var periodDays = map[LearningPeriod]int{
	PeriodOneWeek:    7,
	PeriodTwoWeeks:   14,
	PeriodOneMonth:   30,
	PeriodTwoMonths:  60,
	PeriodSchoolTerm: 90,
}

// Days returns the day count for the period, defaulting to one week for
// unknown codes.
func (p LearningPeriod) Days() int {
	if d, ok := periodDays[p]; ok {
		return d
	}
	return periodDays[PeriodOneWeek]
}

func (p LearningPeriod) Valid() bool {
	_, ok := periodDays[p]
	return ok
}

// LearningActivity is one scheduled unit of a plan. Activities come out of
// the generator as drafts (possibly missing day, duration or content) and
// are completed by the scheduler.
//
// DurationMinutes stays nil until a true duration is known; it is never
// filled with a fabricated value.
// swagger:model LearningActivity
type LearningActivity struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	ContentID       string         `json:"content_id,omitempty"`
	ContentURL      string         `json:"content_url,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	Order           int            `json:"order"`
	Day             int            `json:"day"`
	Status          ActivityStatus `json:"status"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
	LearningBenefit string         `json:"learning_benefit,omitempty"`
}

// HasContentRef reports whether the activity carries a resolved content
// reference (id and url).
func (a *LearningActivity) HasContentRef() bool {
	return a.ContentID != "" && a.ContentURL != ""
}

// PlanMetadata is the free bag persisted alongside a plan.
type PlanMetadata struct {
	LearningPeriod LearningPeriod `json:"learning_period,omitempty"`
	PeriodDays     int            `json:"period_days,omitempty"`
}

// swagger:model LearningPlan
type LearningPlan struct {
	ID          string             `json:"id"`
	StudentID   string             `json:"student_id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	Subject     string             `json:"subject"`
	Topics      []string           `json:"topics,omitempty"`
	Activities  []LearningActivity `json:"activities"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Status      PlanStatus         `json:"status"`
	Progress    float64            `json:"progress_percentage"`
	Metadata    PlanMetadata       `json:"metadata"`
}

// DayCount returns the plan's target day count, falling back to the highest
// day any activity carries when metadata is absent.
func (p *LearningPlan) DayCount() int {
	if p.Metadata.PeriodDays > 0 {
		return p.Metadata.PeriodDays
	}
	max := 0
	for i := range p.Activities {
		if p.Activities[i].Day > max {
			max = p.Activities[i].Day
		}
	}
	return max
}

// RecomputeProgress derives the progress percentage from completed
// activities and flips the plan status to completed when everything is done.
func (p *LearningPlan) RecomputeProgress() {
	if len(p.Activities) == 0 {
		p.Progress = 0
		return
	}
	done := 0
	for i := range p.Activities {
		if p.Activities[i].Status == ActivityCompleted {
			done++
		}
	}
	p.Progress = float64(done) / float64(len(p.Activities)) * 100
	if done == len(p.Activities) && p.Status == PlanActive {
		p.Status = PlanCompleted
	}
}

// FindActivity returns a pointer into the plan's activity slice, or nil.
func (p *LearningPlan) FindActivity(activityID string) *LearningActivity {
	for i := range p.Activities {
		if p.Activities[i].ID == activityID {
			return &p.Activities[i]
		}
	}
	return nil
}

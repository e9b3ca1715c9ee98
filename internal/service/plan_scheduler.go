package service

import (
	"fmt"
	"sort"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/pkg/logger"

	"go.uber.org/zap"
)

// The activity scheduler takes the generator's draft activities and makes
// the plan well-formed: every day in [1, dayCount] covered, every activity
// carrying a content reference and, where resolvable, a true duration.
// It is deterministic for a fixed content list and draft activity list, and
// a no-op on plans that are already fully scheduled.

func copyDuration(d *int) *int {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}

// contentAssigner hands out content items round-robin in retrieval order,
// always preferring items no activity references yet before reusing any.
type contentAssigner struct {
	items []model.ContentItem
	usage map[string]int
}

func newContentAssigner(items []model.ContentItem) *contentAssigner {
	return &contentAssigner{items: items, usage: make(map[string]int, len(items))}
}

func (a *contentAssigner) byID(id string) *model.ContentItem {
	for i := range a.items {
		if a.items[i].ID == id {
			return &a.items[i]
		}
	}
	return nil
}

// markUsed records an existing reference so later assignments rotate past it.
func (a *contentAssigner) markUsed(id string) {
	a.usage[id]++
}

// next returns the least-used item, ties broken by retrieval order.
func (a *contentAssigner) next() *model.ContentItem {
	if len(a.items) == 0 {
		return nil
	}
	best := -1
	for i := range a.items {
		if best == -1 || a.usage[a.items[i].ID] < a.usage[a.items[best].ID] {
			best = i
		}
	}
	item := &a.items[best]
	a.usage[item.ID]++
	return item
}

// ScheduleActivities distributes the plan's activities across every day in
// [1, dayCount], back-fills content references and durations, and
// synthesizes review activities for uncovered days. It returns the number
// of activities left without a resolvable duration or content reference;
// such activities are reported, never silently defaulted.
func ScheduleActivities(plan *model.LearningPlan, content []model.ContentItem, dayCount int) int {
	if dayCount < 1 {
		dayCount = 1
	}
	assigner := newContentAssigner(content)

	// Pass 1: keep valid references and account for them, so assignment
	// prefers untouched items.
	for i := range plan.Activities {
		act := &plan.Activities[i]
		if act.ContentID == "" {
			continue
		}
		item := assigner.byID(act.ContentID)
		if item == nil {
			// Reference to an item outside the retrieved set; the model
			// made it up. Drop it and resolve in pass 2.
			act.ContentID = ""
			act.ContentURL = ""
			continue
		}
		assigner.markUsed(item.ID)
		act.ContentURL = item.URL
		if act.DurationMinutes == nil {
			act.DurationMinutes = copyDuration(item.DurationMinutes)
		}
	}

	// Pass 2: resolve activities without a reference, in draft order.
	for i := range plan.Activities {
		act := &plan.Activities[i]
		if act.ContentID != "" {
			continue
		}
		item := assigner.next()
		if item == nil {
			continue
		}
		act.ContentID = item.ID
		act.ContentURL = item.URL
		if act.DurationMinutes == nil {
			act.DurationMinutes = copyDuration(item.DurationMinutes)
		}
	}

	// Clamp stray day numbers into the period.
	covered := make(map[int]bool, dayCount)
	for i := range plan.Activities {
		act := &plan.Activities[i]
		if act.Day < 1 {
			act.Day = 1
		}
		if act.Day > dayCount {
			act.Day = dayCount
		}
		covered[act.Day] = true
	}

	// Pass 3: synthesize lightweight activities for uncovered days, backed
	// by content through the same assignment rule.
	if len(content) > 0 {
		for day := 1; day <= dayCount; day++ {
			if covered[day] {
				continue
			}
			item := assigner.next()
			plan.Activities = append(plan.Activities, model.LearningActivity{
				ID:              model.GenerateUUID(),
				Title:           fmt.Sprintf("Review and practice: %s", item.Title),
				Description:     fmt.Sprintf("Revisit %s and practice what you learned.", item.Title),
				ContentID:       item.ID,
				ContentURL:      item.URL,
				DurationMinutes: copyDuration(item.DurationMinutes),
				Day:             day,
				Status:          model.ActivityNotStarted,
				LearningBenefit: "Reinforces earlier material through spaced review.",
			})
			covered[day] = true
		}
	}

	// Stable order: by day, draft order within a day.
	sort.SliceStable(plan.Activities, func(i, j int) bool {
		return plan.Activities[i].Day < plan.Activities[j].Day
	})
	for i := range plan.Activities {
		plan.Activities[i].Order = i + 1
	}

	// An activity that still lacks a duration or a reference is invalid;
	// report it rather than inventing a value.
	invalid := 0
	for i := range plan.Activities {
		act := &plan.Activities[i]
		if act.DurationMinutes == nil || !act.HasContentRef() {
			invalid++
			logger.Log.Error("activity left unresolved after scheduling",
				zap.String("plan_id", plan.ID),
				zap.String("activity_id", act.ID),
				zap.String("title", act.Title),
				zap.Bool("has_content", act.HasContentRef()),
				zap.Bool("has_duration", act.DurationMinutes != nil))
		}
	}
	return invalid
}

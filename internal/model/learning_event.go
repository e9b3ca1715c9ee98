package model

import (
	"time"

	"gorm.io/gorm"
)

type EventType string

const (
	EventPlanGenerated   EventType = "plan_generated"
	EventPlanDeleted     EventType = "plan_deleted"
	EventActivityUpdated EventType = "activity_updated"
	EventQuestionAsked   EventType = "question_asked"
	EventReportCreated   EventType = "report_created"
)

// LearningEvent is the audit row written for every plan generation,
// activity status change and question asked.
type LearningEvent struct {
	gorm.Model
	UserID     uint      `gorm:"index;type:bigint unsigned"`
	EventType  EventType `gorm:"size:50;index"`
	PlanID     string    `gorm:"size:36;index"`
	ActivityID string    `gorm:"size:36"`
	Subject    string    `gorm:"size:100"`
	Detail     string    `gorm:"type:text"`
	Duration   int       `gorm:"default:0"` // milliseconds spent in the pipeline
	Succeeded  bool      `gorm:"default:true"`
	CreatedAt  time.Time
}

func (LearningEvent) TableName() string {
	return "learning_events"
}

package repository

import (
	"learning_copilot_backend/internal/model"

	"gorm.io/gorm"
)

type EventRepository struct {
	DB *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{DB: db}
}

func (r *EventRepository) Create(event *model.LearningEvent) error {
	return r.DB.Create(event).Error
}

func (r *EventRepository) ListByUser(userID uint, page, limit int) ([]model.LearningEvent, int64, error) {
	var events []model.LearningEvent
	var total int64

	q := r.DB.Model(&model.LearningEvent{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	return events, total, err
}

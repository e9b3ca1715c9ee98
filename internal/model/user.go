package model

import (
	"fmt"
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

type LearningStyle string

const (
	Visual         LearningStyle = "visual"
	Auditory       LearningStyle = "auditory"
	ReadingWriting LearningStyle = "reading_writing"
	Kinesthetic    LearningStyle = "kinesthetic"
	Mixed          LearningStyle = "mixed"
)

// swagger:model User
type User struct {
	BaseModel
	Name          string        `gorm:"size:100;not null" json:"name"`
	Email         string        `gorm:"size:100;unique;not null" json:"email"`
	Password      string        `gorm:"size:100;not null" json:"-"`
	Role          UserRole      `gorm:"type:enum('student','teacher','admin');default:'student'" json:"role"`
	GradeLevel    *int          `json:"gradeLevel"`
	Subjects      []string      `gorm:"serializer:json;type:json" json:"subjectsOfInterest"`
	LearningStyle LearningStyle `gorm:"size:20;default:'mixed'" json:"learningStyle"`
	Disabled      bool          `gorm:"default:false" json:"disabled"`
	LastLogin     time.Time     `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
	LastSeen      time.Time     `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}

// StudentProfile is the index-document projection of a user. It is rebuilt
// from the relational row on every register/profile update and treated as
// immutable while a plan is being generated.
type StudentProfile struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	GradeLevel    *int          `json:"grade_level"`
	Subjects      []string      `json:"subjects_of_interest"`
	LearningStyle LearningStyle `json:"learning_style"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// GenerateUserDocID maps a relational user id onto its profile document key.
func GenerateUserDocID(id uint) string {
	return fmt.Sprintf("user-%d", id)
}

func (u *User) Profile() *StudentProfile {
	subjects := make([]string, len(u.Subjects))
	copy(subjects, u.Subjects)
	return &StudentProfile{
		ID:            GenerateUserDocID(u.ID),
		Name:          u.Name,
		Email:         u.Email,
		GradeLevel:    u.GradeLevel,
		Subjects:      subjects,
		LearningStyle: u.LearningStyle,
		UpdatedAt:     u.UpdatedAt,
	}
}

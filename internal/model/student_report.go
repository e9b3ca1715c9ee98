package model

import "time"

// StudentReport is a synthesized report document (demo data) stored in the
// student-reports index. The PDF/HTML/image files live in object storage and
// are referenced by URL.
// swagger:model StudentReport
type StudentReport struct {
	ID             string    `json:"id"`
	StudentName    string    `json:"student_name"`
	GradeLevel     int       `json:"grade_level"`
	Subject        string    `json:"subject"`
	SchoolYear     string    `json:"school_year"`
	Term           string    `json:"term"`
	AssessmentText string    `json:"assessment_text"`
	Strengths      []string  `json:"strengths,omitempty"`
	Improvements   []string  `json:"improvements,omitempty"`
	ImageURL       string    `json:"image_url,omitempty"`
	PDFURL         string    `json:"pdf_url,omitempty"`
	HTMLURL        string    `json:"html_url,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

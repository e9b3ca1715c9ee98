package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Index names in the managed search service.
const (
	IndexContent  = "educational-content"
	IndexPlans    = "learning-plans"
	IndexProfiles = "user-profiles"
	IndexReports  = "student-reports"
)

const (
	MimeImage = "image/"
	MimePDF   = "application/pdf"
	MimeHTML  = "text/html"
)

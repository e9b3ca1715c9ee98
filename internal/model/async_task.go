package model

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Finished reports whether the task reached a terminal state.
func (s TaskStatus) Finished() bool {
	return s == TaskCompleted || s == TaskFailed
}

// AsyncTask is the bookkeeping record for a long-running generation,
// polled out of band via GET /tasks/status/:taskId.
// swagger:model AsyncTask
type AsyncTask struct {
	TaskID      string      `json:"task_id"`
	OwnerID     uint        `json:"owner_id"`
	TaskType    string      `json:"task_type"`
	Status      TaskStatus  `json:"status"`
	Progress    int         `json:"progress"`
	Message     string      `json:"message,omitempty"`
	Result      interface{} `json:"result,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// TaskUpdate carries the mutable fields of an AsyncTask; nil means
// "leave unchanged".
type TaskUpdate struct {
	Status   *TaskStatus
	Progress *int
	Message  *string
	Result   interface{}
	Error    *string
}

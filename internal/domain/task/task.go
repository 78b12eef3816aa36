package task

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("task not found")

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Priority      string    `json:"priority"`
	PriorityLevel int       `json:"priorityLevel"`
	Pending       bool      `json:"pending"`
	Done          bool      `json:"done"`
	UserID        string    `json:"user"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// LevelFor projects a priority label onto its sort rank. Unknown labels rank
// lowest; the stored priorityLevel is always this projection of the stored
// priority, never a client-supplied value.
func LevelFor(priority string) int {
	switch priority {
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	default:
		return 0
	}
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description" binding:"required"`
	Priority    string     `json:"priority" binding:"omitempty"`
	Pending     *bool      `json:"pending" binding:"omitempty"`
	Done        bool       `json:"done" binding:"omitempty"`
	StartTime   *time.Time `json:"startTime" binding:"omitempty"`
	EndTime     *time.Time `json:"endTime" binding:"omitempty"`
}

// UpdateTaskRequest overwrites the mutable fields wholesale. startTime,
// endTime and the owner are immutable once created.
type UpdateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Priority    string `json:"priority" binding:"omitempty"`
	Pending     bool   `json:"pending" binding:"omitempty"`
	Done        bool   `json:"done" binding:"omitempty"`
}

// ListFilter mirrors the query string of GET /api/tasks. A limit <= 0 means
// "uncapped, ranked by priority".
type ListFilter struct {
	Pending      bool
	Done         bool
	PendingLimit int
	DoneLimit    int
}

// Stats fields are six independent counts, deliberately not cross-validated
// against each other (concurrent writers can skew a snapshot slightly).
type Stats struct {
	TotalTasks                 int `json:"totalTasks"`
	PendingTasks               int `json:"pendingTasks"`
	HighPriorityPendingTasks   int `json:"highPriorityPendingTasks"`
	MediumPriorityPendingTasks int `json:"mediumPriorityPendingTasks"`
	LowPriorityPendingTasks    int `json:"lowPriorityPendingTasks"`
	DoneTasks                  int `json:"doneTasks"`
}

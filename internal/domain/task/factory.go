package task

import (
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest fills defaults at call time: pending defaults to true
// when omitted, the time window defaults to now() resolved per call (not a
// value frozen at process start), and priorityLevel is derived from the
// stored priority.
func NewFromCreateRequest(ownerID string, req CreateTaskRequest) Task {
	now := time.Now().UTC()

	priority := req.Priority
	if priority == "" {
		priority = PriorityLow
	}

	pending := true
	if req.Pending != nil {
		pending = *req.Pending
	}

	start := now
	if req.StartTime != nil {
		start = *req.StartTime
	}

	end := now
	if req.EndTime != nil {
		end = *req.EndTime
	}

	return Task{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		Priority:      priority,
		PriorityLevel: LevelFor(req.Priority),
		Pending:       pending,
		Done:          req.Done,
		UserID:        ownerID,
		StartTime:     start,
		EndTime:       end,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

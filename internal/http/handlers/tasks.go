package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
)

type TasksStore interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (task.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	ListByDateWindow(ctx context.Context, ownerID string, from, to time.Time) ([]task.Task, error)
	ListPending(ctx context.Context, ownerID string, limit int) ([]task.Task, error)
	ListDone(ctx context.Context, ownerID string, limit int) ([]task.Task, error)
	ListAll(ctx context.Context, ownerID string) ([]task.Task, error)
	Stats(ctx context.Context, ownerID string) (task.Stats, error)
}

type TasksHandler struct {
	repo TasksStore
}

func NewTasksHandler(repo TasksStore) *TasksHandler {
	return &TasksHandler{repo: repo}
}

func ownerFrom(ctx *gin.Context) (string, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, middlewares.MsgTokenFailed)
		return "", false
	}
	return id, true
}

func (h *TasksHandler) CreateTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.repo.Create(cctx, task.NewFromCreateRequest(owner, req))

	if err != nil {
		if errors.Is(err, postgres.ErrDescriptionAlreadyUsed) {
			RespondBadRequest(ctx, "Task description already in use", nil)
			return
		}

		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *TasksHandler) UpdateTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.Update(cctx, owner, ctx.Param("id"), req)

	if err != nil {
		switch {
		case errors.Is(err, task.ErrNotFound):
			RespondNotFound(ctx, "Task not found")
		case errors.Is(err, postgres.ErrDescriptionAlreadyUsed):
			RespondBadRequest(ctx, "Task description already in use", nil)
		default:
			RespondInternal(ctx, "Could not update task")
		}
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *TasksHandler) GetTaskById(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	t, err := h.repo.GetByID(cctx, owner, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "No Task Found")
			return
		}
		RespondInternal(ctx, "Could not fetch task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) DeleteTask(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, owner, ctx.Param("id"))

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "No Task Found")
			return
		}
		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Task removed"})
}

// ListTasksByDate serves GET /api/tasks/date?date=YYYY-MM-DD: tasks whose
// start AND end both fall inside that calendar day, bounds inclusive.
func (h *TasksHandler) ListTasksByDate(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	day, err := time.Parse("2006-01-02", ctx.Query("date"))

	if err != nil {
		RespondBadRequest(ctx, "date must be formatted YYYY-MM-DD", nil)
		return
	}

	from := day
	to := day.AddDate(0, 0, 1)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tasks, err := h.repo.ListByDateWindow(cctx, owner, from, to)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	if len(tasks) == 0 {
		RespondNotFound(ctx, "No Tasks Found")
		return
	}

	ctx.JSON(http.StatusOK, tasks)
}

// ListTasks serves GET /api/tasks with the pending/done/limit query knobs.
//
// Assembly rules (the observable contract):
//   - pending=true selects pending tasks: newest-first capped at pendingLimit
//     when the limit is positive, otherwise ranked by priority then recency.
//   - done=true does the same for done tasks with its own limit.
//   - the result is pending rows then done rows whenever either set is
//     non-empty; only when both are empty AND done was not requested does the
//     response fall back to every task, pending first, newest first.
func (h *TasksHandler) ListTasks(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	filter := parseListFilter(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var (
		pendingTasks []task.Task
		doneTasks    []task.Task
		err          error
	)

	if filter.Pending {
		pendingTasks, err = h.repo.ListPending(cctx, owner, filter.PendingLimit)

		if err != nil {
			RespondInternal(ctx, "Could not list tasks")
			return
		}
	}

	if filter.Done {
		doneTasks, err = h.repo.ListDone(cctx, owner, filter.DoneLimit)

		if err != nil {
			RespondInternal(ctx, "Could not list tasks")
			return
		}
	}

	allTasks := make([]task.Task, 0, len(pendingTasks)+len(doneTasks))
	allTasks = append(allTasks, pendingTasks...)
	allTasks = append(allTasks, doneTasks...)

	// Fallback branch only applies when done was not asked for.
	if len(allTasks) == 0 && !filter.Done {
		allTasks, err = h.repo.ListAll(cctx, owner)

		if err != nil {
			RespondInternal(ctx, "Could not list tasks")
			return
		}
	}

	if len(allTasks) == 0 {
		RespondNotFound(ctx, "No Tasks Found")
		return
	}

	ctx.JSON(http.StatusOK, allTasks)
}

func (h *TasksHandler) GetUserStats(ctx *gin.Context) {
	owner, ok := ownerFrom(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	stats, err := h.repo.Stats(cctx, owner)

	if err != nil {
		RespondInternal(ctx, "Could not compute stats")
		return
	}

	if stats.TotalTasks == 0 {
		RespondNotFound(ctx, "No Stats Found")
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

func parseListFilter(ctx *gin.Context) task.ListFilter {
	atoi := func(raw string) int {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return 0
		}
		return n
	}

	return task.ListFilter{
		Pending:      ctx.Query("pending") == "true",
		Done:         ctx.Query("done") == "true",
		PendingLimit: atoi(ctx.Query("pendingLimit")),
		DoneLimit:    atoi(ctx.Query("doneLimit")),
	}
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrDescriptionAlreadyUsed = errors.New("task description already used")

const taskColumns = `id, title, description, priority, priority_level, pending, done, user_id, start_time, end_time, created_at, updated_at`

type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanTask(row pgx.Row, t *task.Task) error {
	return row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.PriorityLevel,
		&t.Pending,
		&t.Done,
		&t.UserID,
		&t.StartTime,
		&t.EndTime,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}

func (r *TasksRepo) collect(ctx context.Context, op, query string, args ...any) ([]task.Task, error) {
	var out []task.Task

	err := r.observe(op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			var t task.Task

			if err := scanTask(rows, &t); err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.observe("tasks.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, priority, priority_level, pending, done, user_id, start_time, end_time, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
			t.ID, t.Title, t.Description, t.Priority, t.PriorityLevel, t.Pending, t.Done, t.UserID, t.StartTime, t.EndTime, t.CreatedAt, t.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return task.Task{}, ErrDescriptionAlreadyUsed
		}

		return task.Task{}, err
	}

	return t, nil
}

// Update rewrites the mutable fields. The WHERE clause matches id and owner
// in one predicate so a foreign task is indistinguishable from a missing one.
func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, req task.UpdateTaskRequest) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.update", func() error {
		return scanTask(r.pool.QueryRow(
			ctx,
			`UPDATE tasks
				SET title = $3,
					description = $4,
					priority = $5,
					priority_level = $6,
					pending = $7,
					done = $8,
					updated_at = NOW()
			WHERE id = $1 AND user_id = $2
			RETURNING `+taskColumns,
			id,
			ownerID,
			req.Title,
			req.Description,
			req.Priority,
			task.LevelFor(req.Priority),
			req.Pending,
			req.Done,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return task.Task{}, ErrDescriptionAlreadyUsed
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	var t task.Task

	err := r.observe("tasks.get_by_id", func() error {
		return scanTask(r.pool.QueryRow(
			ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		), &t)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}

		return task.Task{}, err
	}

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("tasks.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx,
			`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
			id, ownerID,
		)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return task.ErrNotFound
	}

	return nil
}

// ListByDateWindow returns the owner's tasks whose start AND end both fall in
// [from, to], bounds inclusive, ascending by start time.
func (r *TasksRepo) ListByDateWindow(ctx context.Context, ownerID string, from, to time.Time) ([]task.Task, error) {
	return r.collect(ctx, "tasks.list_by_date",
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1
		   AND start_time BETWEEN $2 AND $3
		   AND end_time BETWEEN $2 AND $3
		 ORDER BY start_time ASC`,
		ownerID, from, to,
	)
}

// ListPending: capped lists are newest-created first; uncapped lists rank by
// priority level, then recency.
func (r *TasksRepo) ListPending(ctx context.Context, ownerID string, limit int) ([]task.Task, error) {
	if limit > 0 {
		return r.collect(ctx, "tasks.list_pending",
			`SELECT `+taskColumns+`
			 FROM tasks
			 WHERE user_id = $1 AND pending = TRUE
			 ORDER BY created_at DESC
			 LIMIT $2`,
			ownerID, limit,
		)
	}

	return r.collect(ctx, "tasks.list_pending",
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1 AND pending = TRUE
		 ORDER BY priority_level DESC, created_at DESC`,
		ownerID,
	)
}

func (r *TasksRepo) ListDone(ctx context.Context, ownerID string, limit int) ([]task.Task, error) {
	if limit > 0 {
		return r.collect(ctx, "tasks.list_done",
			`SELECT `+taskColumns+`
			 FROM tasks
			 WHERE user_id = $1 AND done = TRUE
			 ORDER BY created_at DESC
			 LIMIT $2`,
			ownerID, limit,
		)
	}

	return r.collect(ctx, "tasks.list_done",
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1 AND done = TRUE
		 ORDER BY priority_level DESC, created_at DESC`,
		ownerID,
	)
}

func (r *TasksRepo) ListAll(ctx context.Context, ownerID string) ([]task.Task, error) {
	return r.collect(ctx, "tasks.list_all",
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1
		 ORDER BY pending DESC, created_at DESC`,
		ownerID,
	)
}

// Stats issues six independent counts. No transaction on purpose: a slightly
// skewed snapshot under concurrent writes is acceptable here.
func (r *TasksRepo) Stats(ctx context.Context, ownerID string) (task.Stats, error) {
	var s task.Stats

	counts := []struct {
		op    string
		where string
		dst   *int
	}{
		{"tasks.stats.total", ``, &s.TotalTasks},
		{"tasks.stats.pending", ` AND pending = TRUE`, &s.PendingTasks},
		{"tasks.stats.pending_high", ` AND pending = TRUE AND priority = 'high'`, &s.HighPriorityPendingTasks},
		{"tasks.stats.pending_medium", ` AND pending = TRUE AND priority = 'medium'`, &s.MediumPriorityPendingTasks},
		{"tasks.stats.pending_low", ` AND pending = TRUE AND priority = 'low'`, &s.LowPriorityPendingTasks},
		{"tasks.stats.done", ` AND done = TRUE`, &s.DoneTasks},
	}

	for _, c := range counts {
		query := `SELECT COUNT(*) FROM tasks WHERE user_id = $1` + c.where

		err := r.observe(c.op, func() error {
			return r.pool.QueryRow(ctx, query, ownerID).Scan(c.dst)
		})

		if err != nil {
			return task.Stats{}, err
		}
	}

	return s, nil
}

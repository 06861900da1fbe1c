package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/task-tracker/internal/model"
)

// TaskRepo persists tasks in the 'tasks' table. Every query is scoped to an
// owner id so one user can never read or mutate another user's tasks.
type TaskRepo struct{ DB *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{DB: db} }

const taskCols = "id,owner_id,title,description,completed,created_at,updated_at"

// TaskUpdate carries the optional fields of a partial update. Nil means
// "leave unchanged".
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskStats aggregates completion counters for one owner.
type TaskStats struct {
	Total     int64
	Completed int64
}

func scanTask(row *sql.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]model.Task, error) {
	defer rows.Close()
	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a task and returns its ID. A title the owner already uses
// maps to ErrTaskExists.
func (r *TaskRepo) Create(ctx context.Context, ownerID uint64, title, description string, completed bool) (uint64, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM tasks WHERE owner_id=? AND title=?)",
		ownerID, title).Scan(&exists)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrTaskExists
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tasks (owner_id, title, description, completed) VALUES (?,?,?,?)",
		ownerID, title, description, completed)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ByID fetches one task owned by ownerID; (nil, nil) when absent, including
// when the task exists but belongs to someone else.
func (r *TaskRepo) ByID(ctx context.Context, ownerID, taskID uint64) (*model.Task, error) {
	return scanTask(r.DB.QueryRowContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE id=? AND owner_id=? LIMIT 1",
		taskID, ownerID))
}

// ListByOwner returns all tasks of one owner, oldest first.
func (r *TaskRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE owner_id=? ORDER BY id",
		ownerID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ListByCompletion returns the owner's tasks filtered on the completed flag.
func (r *TaskRepo) ListByCompletion(ctx context.Context, ownerID uint64, completed bool) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE owner_id=? AND completed=? ORDER BY id",
		ownerID, completed)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// ListPage returns one offset/limit page of the owner's tasks.
func (r *TaskRepo) ListPage(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Task, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE owner_id=? ORDER BY id LIMIT ? OFFSET ?",
		ownerID, limit, skip)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Search returns the owner's tasks whose title and/or description contain
// query. field is "title", "description" or "all". MySQL LIKE is
// case-insensitive under the default collation; LIKE BINARY forces a
// case-sensitive match.
func (r *TaskRepo) Search(ctx context.Context, ownerID uint64, query, field string, caseSensitive bool) ([]model.Task, error) {
	op := "LIKE"
	if caseSensitive {
		op = "LIKE BINARY"
	}
	pattern := "%" + query + "%"

	var (
		where string
		args  []any
	)
	switch field {
	case "title":
		where = "title " + op + " ?"
		args = []any{ownerID, pattern}
	case "description":
		where = "description " + op + " ?"
		args = []any{ownerID, pattern}
	default: // "all"
		where = "(title " + op + " ? OR description " + op + " ?)"
		args = []any{ownerID, pattern, pattern}
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+taskCols+" FROM tasks WHERE owner_id=? AND "+where+" ORDER BY id",
		args...)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

// Update applies a partial update and returns the stored row, or (nil, nil)
// when the task does not exist for this owner.
func (r *TaskRepo) Update(ctx context.Context, ownerID, taskID uint64, upd TaskUpdate) (*model.Task, error) {
	set := ""
	args := []any{}
	if upd.Title != nil {
		set += "title=?,"
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		set += "description=?,"
		args = append(args, *upd.Description)
	}
	if upd.Completed != nil {
		set += "completed=?,"
		args = append(args, *upd.Completed)
	}
	if set != "" {
		set = set[:len(set)-1]
		args = append(args, taskID, ownerID)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE tasks SET "+set+" WHERE id=? AND owner_id=?", args...); err != nil {
			return nil, err
		}
	}
	return r.ByID(ctx, ownerID, taskID)
}

// ToggleComplete flips the completed flag and returns the stored row, or
// (nil, nil) when the task does not exist for this owner.
func (r *TaskRepo) ToggleComplete(ctx context.Context, ownerID, taskID uint64) (*model.Task, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE tasks SET completed=NOT completed WHERE id=? AND owner_id=?",
		taskID, ownerID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, nil
	}
	return r.ByID(ctx, ownerID, taskID)
}

// Delete removes one task and reports whether a row was deleted.
func (r *TaskRepo) Delete(ctx context.Context, ownerID, taskID uint64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM tasks WHERE id=? AND owner_id=?",
		taskID, ownerID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Stats counts the owner's tasks and how many are completed.
func (r *TaskRepo) Stats(ctx context.Context, ownerID uint64) (TaskStats, error) {
	var s TaskStats
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(completed),0) FROM tasks WHERE owner_id=?",
		ownerID).Scan(&s.Total, &s.Completed)
	return s, err
}

package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func setupTaskMock(t *testing.T) (*TaskRepo, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewTaskRepo(db), mock, func() { db.Close() }
}

const taskSelect = "SELECT id,owner_id,title,description,completed,created_at,updated_at FROM tasks"

func taskRows(rows ...[3]any) *sqlmock.Rows {
	now := time.Now().UTC()
	out := sqlmock.NewRows([]string{"id", "owner_id", "title", "description", "completed", "created_at", "updated_at"})
	for i, r := range rows {
		out.AddRow(uint64(i+1), r[0], r[1], "", r[2], now, now)
	}
	return out
}

func TestTaskCreate(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM tasks WHERE owner_id=? AND title=?)")).
		WithArgs(uint64(1), "buy milk").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tasks (owner_id, title, description, completed) VALUES (?,?,?,?)")).
		WithArgs(uint64(1), "buy milk", "2 liters", false).
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := repo.Create(context.Background(), 1, "buy milk", "2 liters", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 5 {
		t.Errorf("id = %d; want 5", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTaskCreate_DuplicateTitle(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM tasks WHERE owner_id=? AND title=?)")).
		WithArgs(uint64(1), "buy milk").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.Create(context.Background(), 1, "buy milk", "", false)
	if !errors.Is(err, ErrTaskExists) {
		t.Fatalf("error = %v; want ErrTaskExists", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestTaskSearch_AllFields(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(taskSelect+" WHERE owner_id=? AND (title LIKE ? OR description LIKE ?) ORDER BY id")).
		WithArgs(uint64(1), "%milk%", "%milk%").
		WillReturnRows(taskRows([3]any{uint64(1), "buy milk", false}))

	tasks, err := repo.Search(context.Background(), 1, "milk", "all", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "buy milk" {
		t.Errorf("tasks = %+v; want one 'buy milk'", tasks)
	}
}

func TestTaskSearch_TitleCaseSensitive(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(taskSelect+" WHERE owner_id=? AND title LIKE BINARY ? ORDER BY id")).
		WithArgs(uint64(1), "%Milk%").
		WillReturnRows(taskRows())

	tasks, err := repo.Search(context.Background(), 1, "Milk", "title", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("tasks = %+v; want empty result", tasks)
	}
}

func TestTaskListPage(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(taskSelect+" WHERE owner_id=? ORDER BY id LIMIT ? OFFSET ?")).
		WithArgs(uint64(1), 2, 4).
		WillReturnRows(taskRows([3]any{uint64(1), "a", false}, [3]any{uint64(1), "b", true}))

	tasks, err := repo.ListPage(context.Background(), 1, 4, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("len = %d; want 2", len(tasks))
	}
}

func TestTaskToggleComplete(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET completed=NOT completed WHERE id=? AND owner_id=?")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(taskSelect+" WHERE id=? AND owner_id=? LIMIT 1")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(taskRows([3]any{uint64(1), "buy milk", true}))

	task, err := repo.ToggleComplete(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task == nil || !task.Completed {
		t.Errorf("task = %+v; want completed", task)
	}
}

func TestTaskToggleComplete_Absent(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET completed=NOT completed WHERE id=? AND owner_id=?")).
		WithArgs(uint64(99), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	task, err := repo.ToggleComplete(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task != nil {
		t.Errorf("task = %+v; want nil for absent task", task)
	}
}

func TestTaskUpdate_Partial(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	title := "new title"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET title=? WHERE id=? AND owner_id=?")).
		WithArgs(title, uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(taskSelect+" WHERE id=? AND owner_id=? LIMIT 1")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnRows(taskRows([3]any{uint64(1), title, false}))

	task, err := repo.Update(context.Background(), 1, 5, TaskUpdate{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task == nil || task.Title != title {
		t.Errorf("task = %+v; want title %q", task, title)
	}
}

func TestTaskDelete(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=? AND owner_id=?")).
		WithArgs(uint64(5), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := repo.Delete(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected deleted = true")
	}
}

func TestTaskDelete_Absent(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tasks WHERE id=? AND owner_id=?")).
		WithArgs(uint64(99), uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), 1, 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted {
		t.Error("expected deleted = false for absent task")
	}
}

func TestTaskStats(t *testing.T) {
	repo, mock, cleanup := setupTaskMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*), COALESCE(SUM(completed),0) FROM tasks WHERE owner_id=?")).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(3, 2))

	s, err := repo.Stats(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Total != 3 || s.Completed != 2 {
		t.Errorf("stats = %+v; want total=3 completed=2", s)
	}
}

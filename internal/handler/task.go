package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/task-tracker/internal/middleware"
	"github.com/iliyamo/task-tracker/internal/model"
	"github.com/iliyamo/task-tracker/internal/queue"
	"github.com/iliyamo/task-tracker/internal/repository"
	queue_publisher "github.com/iliyamo/task-tracker/internal/service"
)

// TaskStore is the slice of the task repository the task endpoints need.
type TaskStore interface {
	Create(ctx context.Context, ownerID uint64, title, description string, completed bool) (uint64, error)
	ByID(ctx context.Context, ownerID, taskID uint64) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Task, error)
	ListByCompletion(ctx context.Context, ownerID uint64, completed bool) ([]model.Task, error)
	ListPage(ctx context.Context, ownerID uint64, skip, limit int) ([]model.Task, error)
	Search(ctx context.Context, ownerID uint64, query, field string, caseSensitive bool) ([]model.Task, error)
	Update(ctx context.Context, ownerID, taskID uint64, upd repository.TaskUpdate) (*model.Task, error)
	ToggleComplete(ctx context.Context, ownerID, taskID uint64) (*model.Task, error)
	Delete(ctx context.Context, ownerID, taskID uint64) (bool, error)
	Stats(ctx context.Context, ownerID uint64) (repository.TaskStats, error)
}

// TaskHandler implements the protected task endpoints. Every handler reads
// the principal resolved by the JWT middleware and scopes queries to it.
// Publish is swappable so tests do not need a broker.
type TaskHandler struct {
	Tasks   TaskStore
	Publish func(ctx context.Context, ev queue.TaskActivityEvent) error
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Publish: queue_publisher.PublishTaskActivity}
}

// ----- DTOs -----

type taskCreateReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}
type taskUpdateReq struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type taskResp struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	OwnerID     uint64 `json:"owner_id"`
}
type taskCreateResp struct {
	taskResp
	Message string `json:"message"`
}

func toTaskResp(t *model.Task) taskResp {
	return taskResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		OwnerID:     t.OwnerID,
	}
}

func toTaskList(ts []model.Task) []taskResp {
	out := make([]taskResp, 0, len(ts))
	for i := range ts {
		out = append(out, toTaskResp(&ts[i]))
	}
	return out
}

func (h *TaskHandler) publishActivity(t *model.Task, username, action string) {
	if h.Publish == nil {
		return
	}
	ev := queue.TaskActivityEvent{
		TaskID:     t.ID,
		OwnerID:    t.OwnerID,
		Username:   username,
		Title:      t.Title,
		Action:     action,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	// Fire-and-forget: broker trouble must not fail the request.
	go func() { _ = h.Publish(context.Background(), ev) }()
}

func taskID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// Create adds a task for the principal. A title the user already has is a 400.
func (h *TaskHandler) Create(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req taskCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Tasks.Create(ctx, u.ID, req.Title, req.Description, req.Completed)
	if err != nil {
		if errors.Is(err, repository.ErrTaskExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "task with this title already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create task failed"})
	}

	t := &model.Task{ID: id, OwnerID: u.ID, Title: req.Title, Description: req.Description, Completed: req.Completed}
	h.publishActivity(t, u.Username, queue.ActionCreated)

	return c.JSON(http.StatusOK, taskCreateResp{
		taskResp: toTaskResp(t),
		Message:  "task created successfully",
	})
}

// List returns all tasks of the principal.
func (h *TaskHandler) List(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTaskList(tasks))
}

// Get returns one task by id, 404 when it does not exist for this user.
func (h *TaskHandler) Get(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.ByID(ctx, u.ID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Update applies a partial update to one task.
func (h *TaskHandler) Update(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	var req taskUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.Update(ctx, u.ID, id, repository.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update task failed"})
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Delete removes one task.
func (h *TaskHandler) Delete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Tasks.Delete(ctx, u.ID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete task failed"})
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("task %d deleted successfully", id)})
}

// ToggleComplete flips the completed flag of one task.
func (h *TaskHandler) ToggleComplete(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := taskID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid task id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Tasks.ToggleComplete(ctx, u.ID, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "toggle task failed"})
	}
	if t == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "task not found"})
	}
	action := queue.ActionReopened
	if t.Completed {
		action = queue.ActionCompleted
	}
	h.publishActivity(t, u.Username, action)
	return c.JSON(http.StatusOK, toTaskResp(t))
}

// Completed returns the principal's completed tasks.
func (h *TaskHandler) Completed(c echo.Context) error {
	return h.listByCompletion(c, true)
}

// Incomplete returns the principal's incomplete tasks.
func (h *TaskHandler) Incomplete(c echo.Context) error {
	return h.listByCompletion(c, false)
}

func (h *TaskHandler) listByCompletion(c echo.Context, completed bool) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListByCompletion(ctx, u.ID, completed)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTaskList(tasks))
}

// Search matches tasks on title and/or description. search_by is one of
// all, title, description; case_sensitive switches to a binary match. An
// empty result set is a 404, mirroring the lookup-by-id behavior.
func (h *TaskHandler) Search(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	query := c.QueryParam("query")
	if query == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query is required"})
	}
	searchBy := c.QueryParam("search_by")
	if searchBy == "" {
		searchBy = "all"
	}
	if searchBy != "all" && searchBy != "title" && searchBy != "description" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "search_by must be 'all', 'title', or 'description'"})
	}
	caseSensitive := c.QueryParam("case_sensitive") == "true"

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.Search(ctx, u.ID, query, searchBy, caseSensitive)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	if len(tasks) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no tasks found matching your search criteria"})
	}
	return c.JSON(http.StatusOK, toTaskList(tasks))
}

// Paginated returns one skip/limit page of the principal's tasks.
func (h *TaskHandler) Paginated(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	skip, _ := strconv.Atoi(c.QueryParam("skip"))
	if skip < 0 {
		skip = 0
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tasks, err := h.Tasks.ListPage(ctx, u.ID, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toTaskList(tasks))
}

// Stats aggregates completion counters for the principal.
func (h *TaskHandler) Stats(c echo.Context) error {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Tasks.Stats(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	rate := "0.00%"
	if s.Total > 0 {
		rate = fmt.Sprintf("%.2f%%", float64(s.Completed)/float64(s.Total)*100)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_tasks":      s.Total,
		"completed_tasks":  s.Completed,
		"incomplete_tasks": s.Total - s.Completed,
		"completion_rate":  rate,
	})
}

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"taskboard-api/domain"
)

const requestBodyMaxSize = 1 << 20

type tasksResponse struct {
	Message string            `json:"message"`
	Tasks   []domain.TaskView `json:"tasks"`
}

type taskResponse struct {
	Message string      `json:"message"`
	Task    domain.Task `json:"task"`
}

type taskListResponse struct {
	Message string        `json:"message"`
	Tasks   []domain.Task `json:"tasks"`
}

type taskCountsResponse struct {
	Message    string            `json:"message"`
	TaskCounts domain.TaskCounts `json:"taskCounts"`
}

func decodeBody(c echo.Context, out any) error {
	lr := io.LimitReader(c.Request().Body, requestBodyMaxSize)
	return sonic.ConfigStd.NewDecoder(lr).Decode(out)
}

// getTasks lists every task the caller owns or is assigned to. A filterBy
// query parameter narrows the listing to a trailing due-date window; tasks
// without a due date are always included.
func getTasks(store Storage, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		identity, ok := currentIdentity(c)
		if !ok {
			metrics.SetErrorStage("auth")
			err = c.JSON(http.StatusUnauthorized, errorResponse{Message: msgLoginFirst})
			return err
		}

		filterBy := c.QueryParam("filterBy")
		metrics.SetFilterProvided(filterBy != "")

		fetchStart := time.Now()
		tasks, fetchErr := store.FetchTasksFor(ctx, identity.UserID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, serverError(fetchErr))
			return err
		}

		if filterBy != "" {
			start, end := domain.ResolveDateRange(filterBy, time.Now())
			filtered := tasks[:0]
			for _, t := range tasks {
				if t.DueWithin(start, end) {
					filtered = append(filtered, t)
				}
			}
			tasks = filtered
		}

		usersByID, lookupErr := store.FetchUsersByID(ctx, referencedUserIDs(tasks))
		if lookupErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(lookupErr)
			err = c.JSON(http.StatusInternalServerError, serverError(lookupErr))
			return err
		}

		views := make([]domain.TaskView, 0, len(tasks))
		for _, t := range tasks {
			views = append(views, domain.NewTaskView(t, usersByID))
		}
		metrics.SetTasksReturned(len(views))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{Message: msgTasksRetrieved, Tasks: views})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func referencedUserIDs(tasks []domain.Task) []string {
	seen := map[string]struct{}{}
	ids := []string{}
	for _, t := range tasks {
		for _, id := range append([]string{t.OwnerID}, t.AssigneeIDs...) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// getTask fetches a task by ID. The route is deliberately open: any caller
// holding the ID may fetch it.
func getTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := store.FetchTask(c.Request().Context(), c.Param("id"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgTaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgTaskRetrieved, Task: task})
	}
}

func createTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		identity, _ := currentIdentity(c)

		var req createTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		if errs := validateCreateTask(req); len(errs) > 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Errors: errs})
		}

		checklist := make([]domain.Subtask, 0, len(req.Checklist))
		for _, item := range req.Checklist {
			sub := domain.Subtask{Text: item.Text}
			if item.Done != nil {
				sub.Done = *item.Done
			}
			checklist = append(checklist, sub)
		}

		task := domain.NewTask(identity.UserID, req.Title, checklist)
		if req.Priority != "" {
			task.Priority = domain.Priority(req.Priority)
		}
		if req.DueDate != "" {
			due, _ := parseDueDate(req.DueDate)
			task.DueDate = &due
		}

		if req.AssignedUserID != "" && req.AssignedUserID != identity.UserID {
			if _, err := store.FetchUser(ctx, req.AssignedUserID); err != nil {
				if isNotFound(err) {
					return c.JSON(http.StatusNotFound, errorResponse{Message: msgAssignedUserMissing})
				}
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, serverError(err))
			}
			task.AddAssignee(req.AssignedUserID)
		}

		saved, err := store.SaveTask(ctx, task)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusCreated, taskResponse{Message: msgTaskCreated, Task: saved})
	}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// updateTaskStatus moves a task through the workflow. Only assignees may do
// so; the task existence check runs first so 404 wins over 403.
func updateTaskStatus(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		identity, _ := currentIdentity(c)

		var req updateStatusRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}
		status := domain.Status(req.Status)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, errorResponse{Message: msgInvalidStatus})
		}

		task, err := store.FetchTask(ctx, c.Param("id"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgTaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		if !task.CanMutateStatus(identity.UserID) {
			return c.JSON(http.StatusForbidden, errorResponse{Message: msgNotAnAssignee})
		}

		task.Status = status
		saved, err := store.SaveTask(ctx, task)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgStatusUpdated, Task: saved})
	}
}

type updateTaskRequest struct {
	Title          string                `json:"title"`
	Checklist      []domain.SubtaskInput `json:"checklist"`
	Priority       string                `json:"priority"`
	DueDate        string                `json:"dueDate"`
	AssignedUserID string                `json:"assignedUserId"`
}

// updateTask is the full-update endpoint: title and priority are overwritten
// from the input, the checklist is merged, and due date and assignee are
// applied only when provided. There is no ownership check on this path.
func updateTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req updateTaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.FetchTask(ctx, c.Param("taskId"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgTaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}

		task.Title = req.Title
		task.Priority = domain.Priority(req.Priority)
		task.Checklist = domain.MergeChecklist(task.Checklist, req.Checklist)

		if req.DueDate != "" {
			due, parseErr := parseDueDate(req.DueDate)
			if parseErr != nil {
				return c.JSON(http.StatusBadRequest, errorResponse{Errors: []fieldError{{Field: "dueDate", Message: "Due date must be a valid date"}}})
			}
			task.DueDate = &due
		}

		if req.AssignedUserID != "" && !task.IsAssignee(req.AssignedUserID) {
			if _, err := store.FetchUser(ctx, req.AssignedUserID); err != nil {
				if isNotFound(err) {
					return c.JSON(http.StatusNotFound, errorResponse{Message: msgAssignedUserMissing})
				}
				c.Logger().Error(err)
				return c.JSON(http.StatusInternalServerError, serverError(err))
			}
			task.AddAssignee(req.AssignedUserID)
		}

		saved, err := store.SaveTask(ctx, task)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgTaskUpdated, Task: saved})
	}
}

// getTaskCounts aggregates the caller's tasks for the dashboard.
func getTaskCounts(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		identity, _ := currentIdentity(c)

		tasks, err := store.FetchTasksFor(c.Request().Context(), identity.UserID)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		counts := domain.AggregateCounts(tasks)
		return c.JSON(http.StatusOK, taskCountsResponse{Message: msgTaskCounts, TaskCounts: counts})
	}
}

// assignAllTasks adds the target user to every task's assignee set. The
// per-task saves are independent; a failure partway leaves earlier tasks
// updated.
func assignAllTasks(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		targetID := c.Param("id")

		tasks, err := store.FetchAllTasks(ctx)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		if len(tasks) == 0 {
			return c.JSON(http.StatusNotFound, errorResponse{Message: msgNoTasksFound})
		}

		updated := make([]domain.Task, 0, len(tasks))
		for _, task := range tasks {
			if task.AddAssignee(targetID) {
				saved, saveErr := store.SaveTask(ctx, task)
				if saveErr != nil {
					c.Logger().Error(saveErr)
					return c.JSON(http.StatusInternalServerError, serverError(saveErr))
				}
				task = saved
			}
			updated = append(updated, task)
		}
		return c.JSON(http.StatusOK, taskListResponse{Message: msgTasksAssigned, Tasks: updated})
	}
}

func deleteTask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		task, err := store.DeleteTask(c.Request().Context(), c.Param("id"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgTaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgTaskDeleted, Task: task})
	}
}

type updateSubtaskRequest struct {
	Done bool `json:"done"`
}

func updateSubtask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		var req updateSubtaskRequest
		if err := decodeBody(c, &req); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		task, err := store.FetchTask(ctx, c.Param("taskId"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgSubtaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		sub := task.Subtask(c.Param("subtaskId"))
		if sub == nil {
			return c.JSON(http.StatusNotFound, errorResponse{Message: msgSubtaskNotFound})
		}
		sub.Done = req.Done

		saved, err := store.SaveTask(ctx, task)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgSubtaskUpdated, Task: saved})
	}
}

func deleteSubtask(store Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		task, err := store.FetchTask(ctx, c.Param("taskId"))
		if err != nil {
			if isNotFound(err) {
				return c.JSON(http.StatusNotFound, errorResponse{Message: msgSubtaskNotFound})
			}
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		if !task.RemoveSubtask(c.Param("subtaskId")) {
			return c.JSON(http.StatusNotFound, errorResponse{Message: msgSubtaskNotFound})
		}

		saved, err := store.SaveTask(ctx, task)
		if err != nil {
			c.Logger().Error(err)
			return c.JSON(http.StatusInternalServerError, serverError(err))
		}
		return c.JSON(http.StatusOK, taskResponse{Message: msgSubtaskDeleted, Task: saved})
	}
}

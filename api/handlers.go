package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth Authenticator, sessions Sessions, logger *log.Logger) {
	requireAuth := AuthMiddleware(auth, sessions)

	user := e.Group("/api/v1/user")
	user.POST("/signup", signup(store))
	user.POST("/login", login(store, auth))
	user.POST("/logout", logout(sessions), requireAuth)
	user.GET("", listUsers(store), requireAuth)
	user.GET("/check-auth", checkAuth(), requireAuth)
	user.GET("/:id", getUser(store), requireAuth)
	user.PATCH("/:id", editUser(store), requireAuth)

	task := e.Group("/api/v1/task")
	task.GET("", getTasks(store, logger), requireAuth)
	task.GET("/count", getTaskCounts(store), requireAuth)
	// Fetch-by-ID is deliberately left open.
	task.GET("/:id", getTask(store))
	task.POST("", createTask(store), requireAuth)
	task.POST("/assign-all/:id", assignAllTasks(store), requireAuth)
	task.PATCH("/update/:taskId", updateTask(store), requireAuth)
	task.PATCH("/:taskId/:subtaskId", updateSubtask(store), requireAuth)
	task.PATCH("/:id", updateTaskStatus(store), requireAuth)
	task.DELETE("/:taskId/:subtaskId", deleteSubtask(store), requireAuth)
	task.DELETE("/:id", deleteTask(store), requireAuth)

	e.GET("/healthz", healthz(store))
}

func healthz(_ Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

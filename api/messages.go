package api

// Response messages, matching the strings clients already display.
const (
	msgTaskCreated         = "Task created successfully"
	msgTaskRetrieved       = "Task retrieved successfully"
	msgTasksRetrieved      = "Tasks retrieved successfully"
	msgTaskUpdated         = "Task updated successfully"
	msgTaskDeleted         = "Task deleted successfully"
	msgTaskNotFound        = "Task not found"
	msgAssignedUserMissing = "Assigned user not found"
	msgTasksAssigned       = "All tasks assigned successfully"
	msgTaskCounts          = "Task counts retrieved successfully"
	msgStatusUpdated       = "Task status updated successfully"
	msgNotAnAssignee       = "Not authorized to update this task"
	msgInvalidStatus       = "Invalid status value"
	msgNoTasksFound        = "No tasks found to assign"
	msgSubtaskNotFound     = "Task or subtask not found"
	msgSubtaskUpdated      = "Subtask status updated successfully"
	msgSubtaskDeleted      = "Subtask deleted successfully"
	msgServerError         = "Server error, please try again later"

	msgInvalidToken    = "Invalid token"
	msgLoginFirst      = "Please login first"
	msgUserCreated     = "User created successfully"
	msgLoginSuccess    = "Login successful"
	msgLogoutSuccess   = "Logout successful"
	msgUserUpdated     = "User updated successfully"
	msgUserFound       = "User found successfully"
	msgUserNotFound    = "User not found"
	msgUsersRetrieved  = "Users fetched successfully"
	msgInvalidPassword = "Invalid Password"
	msgUserExists      = "User already exists"
	msgAuthenticated   = "Authenticated"
)

type errorResponse struct {
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func serverError(err error) errorResponse {
	return errorResponse{Message: msgServerError, Error: err.Error()}
}

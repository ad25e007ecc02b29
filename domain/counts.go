package domain

// Bucket keys are declared explicitly rather than derived from the enum
// strings at runtime, so the dashboard payload shape cannot drift with the
// display labels.
var statusBuckets = map[Status]string{
	StatusBacklog:    "backlog",
	StatusTodo:       "todo",
	StatusInProgress: "inprogress",
	StatusDone:       "done",
}

var priorityBuckets = map[Priority]string{
	PriorityLow:      "lowpriority",
	PriorityModerate: "moderatepriority",
	PriorityHigh:     "highpriority",
}

// TaskCounts is the dashboard aggregation: per-status and per-priority
// tallies plus the number of tasks carrying a due date. It is ephemeral and
// never persisted.
type TaskCounts struct {
	Status       map[string]int `json:"status"`
	Priority     map[string]int `json:"priority"`
	DueDateCount int            `json:"dueDateCount"`
}

// NewTaskCounts returns counts with every known bucket present and zeroed,
// so absent categories report 0 instead of going missing from the payload.
func NewTaskCounts() TaskCounts {
	counts := TaskCounts{
		Status:   make(map[string]int, len(statusBuckets)),
		Priority: make(map[string]int, len(priorityBuckets)),
	}
	for _, key := range statusBuckets {
		counts.Status[key] = 0
	}
	for _, key := range priorityBuckets {
		counts.Priority[key] = 0
	}
	return counts
}

// AggregateCounts tallies the tasks in a single pass. Status or priority
// values outside the known enums contribute to no bucket; the task itself is
// still counted for due-date presence.
func AggregateCounts(tasks []Task) TaskCounts {
	counts := NewTaskCounts()
	for _, t := range tasks {
		if key, ok := statusBuckets[t.Status]; ok {
			counts.Status[key]++
		}
		if key, ok := priorityBuckets[t.Priority]; ok {
			counts.Priority[key]++
		}
		if t.DueDate != nil {
			counts.DueDateCount++
		}
	}
	return counts
}

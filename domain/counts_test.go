package domain

import (
	"testing"
	"time"
)

var allBucketKeys = []struct {
	kind string
	key  string
}{
	{"status", "backlog"},
	{"status", "todo"},
	{"status", "inprogress"},
	{"status", "done"},
	{"priority", "lowpriority"},
	{"priority", "moderatepriority"},
	{"priority", "highpriority"},
}

func TestAggregateCountsEmptyListHasAllZeroBuckets(t *testing.T) {
	counts := AggregateCounts(nil)

	for _, bucket := range allBucketKeys {
		var got int
		var ok bool
		switch bucket.kind {
		case "status":
			got, ok = counts.Status[bucket.key]
		case "priority":
			got, ok = counts.Priority[bucket.key]
		}
		if !ok {
			t.Fatalf("missing %s bucket %q", bucket.kind, bucket.key)
		}
		if got != 0 {
			t.Fatalf("expected %s bucket %q to be 0, got %d", bucket.kind, bucket.key, got)
		}
	}
	if counts.DueDateCount != 0 {
		t.Fatalf("expected zero due date count, got %d", counts.DueDateCount)
	}
	if len(counts.Status) != 4 || len(counts.Priority) != 3 {
		t.Fatalf("unexpected bucket sets: %#v %#v", counts.Status, counts.Priority)
	}
}

func TestAggregateCountsTallies(t *testing.T) {
	due := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{Status: StatusTodo, Priority: PriorityLow},
		{Status: StatusTodo, Priority: PriorityHigh, DueDate: &due},
		{Status: StatusInProgress, Priority: PriorityModerate, DueDate: &due},
		{Status: StatusDone, Priority: PriorityLow},
	}

	counts := AggregateCounts(tasks)

	if counts.Status["todo"] != 2 || counts.Status["inprogress"] != 1 || counts.Status["done"] != 1 || counts.Status["backlog"] != 0 {
		t.Fatalf("unexpected status counts: %#v", counts.Status)
	}
	if counts.Priority["lowpriority"] != 2 || counts.Priority["moderatepriority"] != 1 || counts.Priority["highpriority"] != 1 {
		t.Fatalf("unexpected priority counts: %#v", counts.Priority)
	}
	if counts.DueDateCount != 2 {
		t.Fatalf("expected 2 tasks with due dates, got %d", counts.DueDateCount)
	}
}

func TestAggregateCountsSkipsUnknownValues(t *testing.T) {
	due := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	tasks := []Task{{Status: "Blocked", Priority: "Urgent", DueDate: &due}}

	counts := AggregateCounts(tasks)

	for key, n := range counts.Status {
		if n != 0 {
			t.Fatalf("unknown status leaked into bucket %q", key)
		}
	}
	for key, n := range counts.Priority {
		if n != 0 {
			t.Fatalf("unknown priority leaked into bucket %q", key)
		}
	}
	if counts.DueDateCount != 1 {
		t.Fatalf("due date presence should still be counted, got %d", counts.DueDateCount)
	}
}

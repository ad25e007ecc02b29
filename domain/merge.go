package domain

// SubtaskInput is one incoming checklist item on a task update. Text and Done
// are optional; absent fields leave the stored item untouched.
type SubtaskInput struct {
	ID   string `json:"_id"`
	Text string `json:"subtask"`
	Done *bool  `json:"done"`
}

// MergeChecklist reconciles an incoming checklist against the stored one.
// Items carrying the ID of an existing entry update it in place: text only
// when the incoming text is non-empty, done only when explicitly provided.
// Items without an ID are appended as new entries, left for storage to assign
// identities on save. Incoming IDs that match nothing are dropped silently,
// and stored items the input never mentions are retained unchanged; removal
// goes through the explicit delete-subtask operation instead. Existing items
// keep their relative order and appends follow incoming order.
func MergeChecklist(existing []Subtask, incoming []SubtaskInput) []Subtask {
	merged := make([]Subtask, len(existing))
	copy(merged, existing)

	for _, in := range incoming {
		if in.ID == "" {
			item := Subtask{Text: in.Text}
			if in.Done != nil {
				item.Done = *in.Done
			}
			merged = append(merged, item)
			continue
		}
		for i := range merged {
			if merged[i].ID != in.ID {
				continue
			}
			if in.Text != "" {
				merged[i].Text = in.Text
			}
			if in.Done != nil {
				merged[i].Done = *in.Done
			}
			break
		}
	}
	return merged
}

package domain

// TaskInput is the caller-supplied task payload, scoped to the default
// task list. Due accepts any RFC 3339 timestamp and is normalized
// before submission.
type TaskInput struct {
	Title  string `json:"title"`
	Notes  string `json:"notes"`
	Due    string `json:"due"`
	Status string `json:"status"`
}

package escalate

import "time"

// Status is the lifecycle state of an escalation task. Tasks move
// pending -> processing -> done or failed. This package writes pending
// tasks and reads terminal states; the processing transition belongs
// to the bridge worker consuming the queue.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Task is one escalation request handed to a remote worker.
type Task struct {
	ID       string    `json:"id"`
	Prompt   string    `json:"prompt"`
	Provider string    `json:"provider"`
	Status   Status    `json:"status"`
	Created  time.Time `json:"created"`
}

// Response is a remote worker's answer to one task, keyed by task id
// in the response store.
type Response struct {
	Response  string    `json:"response"`
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

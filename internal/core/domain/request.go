package domain

import "time"

// RunRequest asks for an asynchronous pipeline run. It travels over the
// message broker and into workflow executions, so it stays plain data.
type RunRequest struct {
	RunID       string    `json:"run_id"`
	Set         PointSet  `json:"set"`
	Options     Options   `json:"options"`
	SubmittedAt time.Time `json:"submitted_at"`
}

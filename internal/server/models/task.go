package models

import "time"

// Task belongs to a project. AssigneeID is 0 when the assignee was deleted.
type Task struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	ProjectID  int64     `json:"project_id"`
	AssigneeID int64     `json:"assignee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type TaskUpdate struct {
	Title  *string
	Status *string
}

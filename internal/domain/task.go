package domain

import "time"

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    int        `json:"priority"`
	ProjectID   *string    `json:"projectId,omitempty"`
	UserID      string     `json:"userId"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	Version     int64      `json:"version"`
}

type TaskInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	ProjectID   *string `json:"projectId,omitempty"`
	Version     int64   `json:"version"`
}

// Clone копирует указатели, чтобы хранилище не делило их с вызывающим
func (t Task) Clone() Task {
	if t.ProjectID != nil {
		p := *t.ProjectID
		t.ProjectID = &p
	}
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return t
}

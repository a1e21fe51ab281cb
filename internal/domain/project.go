package domain

import "time"

// Project принадлежит ровно одному пользователю, имя уникально в пределах владельца.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int64     `json:"version"`
}

type ProjectInput struct {
	Name    string `json:"name"`
	Version int64  `json:"version"`
}

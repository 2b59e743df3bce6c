package models

type TodoItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	IsComplete bool   `json:"isComplete"`
	UserID     int64  `json:"userId"`
}

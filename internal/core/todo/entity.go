package todo

import "time"

// Todo は ToDo 項目を表します。
type Todo struct {
	ID        int64
	Title     string
	Completed bool
	CreatedAt time.Time
}

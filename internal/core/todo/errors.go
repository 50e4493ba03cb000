package todo

import "errors"

var (
	// ErrTodoNotFound は ToDo が存在しない場合に返却されます。
	ErrTodoNotFound = errors.New("todo not found")
	// ErrInvalidTitle はタイトルが空の場合に返却されます。
	ErrInvalidTitle = errors.New("title is required")
	// ErrInvalidID はIDが不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
)

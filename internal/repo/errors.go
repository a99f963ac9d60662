package repo

import "errors"

var (
	// ErrNoDSN — строка подключения не задана.
	ErrNoDSN = errors.New("database url is empty")

	// ErrLock — не удалось взять или отпустить advisory lock.
	ErrLock = errors.New("advisory lock")
)

package seeder

import (
	"errors"
	"fmt"
)

// Ошибки seeding.
var (
	// ErrCopyConflict — целевой файл уже существует; перезапись запрещена.
	ErrCopyConflict = errors.New("target file already exists")

	// ErrTooDeep — превышена глубина вложенности (например, цикл симлинков).
	ErrTooDeep = errors.New("directory tree too deep")
)

// CopyError — ошибка обработки одного элемента верхнего уровня.
type CopyError struct {
	// Entry — имя элемента относительно source root.
	Entry string

	// Source и Target — полные пути элемента.
	Source string
	Target string

	Err error
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("seed %s: copy %s to %s: %v", e.Entry, e.Source, e.Target, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

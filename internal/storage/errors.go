package storage

import "errors"

var (
	// ErrNotFound is returned when a get/update/delete targets an id
	// that does not exist.
	ErrNotFound = errors.New("запись не найдена")

	// ErrDuplicate is returned on unique-constraint violations,
	// currently only a repeated telegram_id.
	ErrDuplicate = errors.New("запись уже существует")

	// ErrConflict is returned when a delete is blocked by dependent
	// rows, currently a point with shifts referencing it.
	ErrConflict = errors.New("запись используется другими записями")
)

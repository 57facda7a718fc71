package service

import "errors"

var (
	// ErrAlreadyRegistered rejects a repeated registration; a role is
	// assigned exactly once and never overwritten.
	ErrAlreadyRegistered = errors.New("вы уже зарегистрированы")

	// ErrNotRegistered rejects actions that require registration.
	ErrNotRegistered = errors.New("сначала зарегистрируйтесь: /register")

	// ErrRatingRange rejects a review rating outside the 0–5 bounds.
	ErrRatingRange = errors.New("рейтинг должен быть от 0 до 5")
)

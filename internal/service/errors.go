package service

import "errors"

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidOption   = errors.New("invalid option index")
	ErrEmptyName       = errors.New("submission name is required")
	ErrInvalidTapLog   = errors.New("invalid tap log")
)

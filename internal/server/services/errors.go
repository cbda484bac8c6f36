package services

import "errors"

// ErrInvalidInput wraps every rejected request field.
var ErrInvalidInput = errors.New("invalid input")

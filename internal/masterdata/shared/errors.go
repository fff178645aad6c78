package shared

import "errors"

var (
	ErrNotFound   = errors.New("master data record not found")
	ErrDuplicate  = errors.New("master data record already exists")
	ErrValidation = errors.New("master data validation failed")
	ErrInvalidID  = errors.New("invalid ID")
)

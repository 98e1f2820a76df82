package employee

import "errors"

var (
	ErrInvalidID          = errors.New("employee: invalid id")
	ErrInvalidName        = errors.New("employee: invalid name")
	ErrInvalidEmail       = errors.New("employee: invalid email")
	ErrInvalidPhone       = errors.New("employee: invalid phone")
	ErrInvalidJobTitle    = errors.New("employee: invalid job title")
	ErrInvalidSalary      = errors.New("employee: invalid salary")
	ErrEmployeeNotFound   = errors.New("employee: not found")
	ErrEmailAlreadyExists = errors.New("employee: email already exists")
)

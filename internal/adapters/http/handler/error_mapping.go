package handler

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/employee-directory/internal/core/employee"
)

// errBadRequest はリクエスト本文が解釈できない場合のエラーです。
var errBadRequest = errors.New("request: malformed body")

func toHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errBadRequest),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidEmail),
		errors.Is(err, employee.ErrInvalidPhone),
		errors.Is(err, employee.ErrInvalidJobTitle),
		errors.Is(err, employee.ErrInvalidSalary):
		return http.StatusBadRequest
	case errors.Is(err, employee.ErrEmailAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

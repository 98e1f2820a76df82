package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ogurasousui/employee-directory/internal/adapters/http/dto"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/sirupsen/logrus"
)

// maxBodyBytes はリクエスト本文の上限です。
const maxBodyBytes = 1 << 20

// EmployeeHandler は /employees の REST 実装です。
type EmployeeHandler struct {
	svc employee.UseCase
	log logrus.FieldLogger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase, log logrus.FieldLogger) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, log: log}
}

// List は全社員を作成順で返します。
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEntities(list))
}

// Get は 1 件返します。
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.svc.GetEmployee(r.Context(), employee.GetEmployeeInput{ID: mux.Vars(r)["id"]})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromEntity(found))
}

// Create は社員を作成し、採番済みのレコードを 201 で返します。
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.EmployeeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	created, err := h.svc.CreateEmployee(r.Context(), req.CreateInput())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.WithField("employee_id", created.ID).Info("employee created")
	writeJSON(w, http.StatusCreated, dto.FromEntity(created))
}

// Update は指定されたフィールドだけを更新します。
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.EmployeeRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	updated, err := h.svc.UpdateEmployee(r.Context(), req.UpdateInput(mux.Vars(r)["id"]))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.WithField("employee_id", updated.ID).Info("employee updated")
	writeJSON(w, http.StatusOK, dto.FromEntity(updated))
}

// Delete は社員を削除し、確認メッセージを返します。
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.svc.DeleteEmployee(r.Context(), employee.DeleteEmployeeInput{ID: id}); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.log.WithField("employee_id", id).Info("employee deleted")
	writeJSON(w, http.StatusOK, dto.DeleteResponse{Message: "employee deleted", ID: id})
}

func (h *EmployeeHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := toHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": RequestIDFromContext(r.Context()),
		}).Error("request failed")
		message = http.StatusText(status)
	}
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

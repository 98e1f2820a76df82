package handler

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/metrics"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

// livenessMessage は GET / の応答本文です。
const livenessMessage = "employee directory backend is running"

// RouterOptions は NewRouter の任意設定です。
type RouterOptions struct {
	AllowedOrigins []string
	// Metrics が nil の場合は計測せず、MetricsPath も公開しません。
	Metrics     *metrics.Metrics
	MetricsPath string
}

// NewRouter は REST API 全体のハンドラを組み立てます。
func NewRouter(svc employee.UseCase, log logrus.FieldLogger, opts RouterOptions) http.Handler {
	h := NewEmployeeHandler(svc, log)

	r := mux.NewRouter()
	r.Use(requestID, instrument(log, opts.Metrics))

	r.HandleFunc("/", liveness).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	employees := r.PathPrefix("/employees").Subrouter()
	employees.HandleFunc("", h.List).Methods(http.MethodGet)
	employees.HandleFunc("", h.Create).Methods(http.MethodPost)
	employees.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	employees.HandleFunc("/{id}", h.Update).Methods(http.MethodPut)
	employees.HandleFunc("/{id}", h.Delete).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "route not found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
	}).Handler(r)
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, livenessMessage)
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

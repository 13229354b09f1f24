// internal/server/server.go

// Package server exposes the report pipeline over HTTP: report creation,
// markdown download, and the source catalog.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	cerrors "dyemind/internal/common/errors"
	"dyemind/internal/common/validation"
	"dyemind/internal/models"
	"dyemind/pkg/catalog"
)

const maxRequestBody = 1 << 20

// reportRequestSchema rejects malformed report requests before any lookup
// runs.
var reportRequestSchema = map[string]interface{}{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]interface{}{
		"query": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
			"maxLength": 200,
		},
	},
	"required": []interface{}{"query"},
}

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// QueryProcessor runs one probe query through the pipeline.
type QueryProcessor interface {
	GenerateReport(ctx context.Context, query string) (*models.Report, error)
}

type Handler struct {
	processor QueryProcessor
	catalog   *catalog.SourceCatalog
	errors    *cerrors.ErrorHandler
	logger    Logger
}

func NewHandler(processor QueryProcessor, cat *catalog.SourceCatalog, log Logger) *Handler {
	bound := log.With(map[string]interface{}{
		"component": "http-server",
	})
	return &Handler{
		processor: processor,
		catalog:   cat,
		errors:    cerrors.NewErrorHandler(bound),
		logger:    bound,
	}
}

// Register mounts the API routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/api/v1/reports", h.withRequestID(http.HandlerFunc(h.handleCreateReport)))
	mux.Handle("/api/v1/reports/download", h.withRequestID(http.HandlerFunc(h.handleDownloadReport)))
	mux.Handle("/api/v1/sources", h.withRequestID(http.HandlerFunc(h.handleListSources)))
}

// withRequestID tags every request and response with an id so one report run
// can be traced across log lines.
func (h *Handler) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
			r.Header.Set("X-Request-Id", requestID)
		}
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, cerrors.NewInvalidQueryError("use POST"))
		return
	}

	var payload map[string]interface{}
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := decoder.Decode(&payload); err != nil {
		h.writeError(w, http.StatusBadRequest, cerrors.NewInvalidQueryError("body must be a JSON object"))
		return
	}

	if err := h.validateRequest(reportRequestSchema, payload); err != nil {
		h.writeError(w, http.StatusBadRequest, cerrors.NewInvalidQueryError(err.Error()))
		return
	}
	query, _ := payload["query"].(string)

	report, err := h.processor.GenerateReport(r.Context(), query)
	if err != nil {
		h.errors.WriteHTTPError(w, r, err)
		return
	}

	h.logger.Info("report request completed", map[string]interface{}{
		"requestId":     r.Header.Get("X-Request-Id"),
		"reportId":      report.ID,
		"noData":        report.NoData,
		"fromInference": report.FromInference,
	})
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, cerrors.NewInvalidQueryError("use GET"))
		return
	}

	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		h.writeError(w, http.StatusBadRequest, cerrors.NewInvalidQueryError("query parameter is required"))
		return
	}

	report, err := h.processor.GenerateReport(r.Context(), query)
	if err != nil {
		h.errors.WriteHTTPError(w, r, err)
		return
	}

	h.logger.Info("report download completed", map[string]interface{}{
		"requestId": r.Header.Get("X-Request-Id"),
		"reportId":  report.ID,
		"filename":  report.Filename(),
	})
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename()))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, report.Text)
}

func (h *Handler) handleListSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, cerrors.NewInvalidQueryError("use GET"))
		return
	}

	h.writeJSON(w, http.StatusOK, h.catalog)
}

func (h *Handler) validateRequest(schemaMap, data map[string]interface{}) error {
	result, err := validation.ValidateDocument(schemaMap, data)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid {
		return fmt.Errorf("request validation failed: %v", result.GetErrorMessages())
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, stdErr *cerrors.StandardError) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": stdErr,
	})
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"asset-catalog/internal/catalog/application"
	catalog "asset-catalog/internal/catalog/domain"
	"asset-catalog/internal/catalog/interfaces/ops"
	"asset-catalog/internal/observability/metrics"
)

const (
	opsPrefix     = "/api/v1/ops/"
	exportsPrefix = "/api/v1/exports/"
	maxBodyBytes  = 1 << 20
)

var validate = validator.New()

// OpsRequest is the body of an operation call.
type OpsRequest struct {
	Args []json.RawMessage `json:"args"`
}

type errorBody struct {
	Error ops.RemoteError `json:"error"`
}

// OpsHandler serves named catalog operations.
type OpsHandler struct {
	registry *ops.Registry
	logger   *log.Logger
}

// NewOpsHandler constructs an OpsHandler.
func NewOpsHandler(registry *ops.Registry, logger *log.Logger) *OpsHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &OpsHandler{registry: registry, logger: logger}
}

// ServeHTTP handles POST /api/v1/ops/{operation}.
func (h *OpsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.registry == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	name := strings.Trim(strings.TrimPrefix(r.URL.Path, opsPrefix), "/")
	if name == "" {
		http.Error(w, "operation is required", http.StatusBadRequest)
		return
	}

	var req OpsRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, fmt.Errorf("%w: read body: %v", ops.ErrInvalidArgs, err))
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, fmt.Errorf("%w: %v", ops.ErrInvalidArgs, err))
			return
		}
	}

	result, err := h.registry.Invoke(r.Context(), name, req.Args)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind string) int {
	switch kind {
	case ops.KindConstraintViolation:
		return http.StatusConflict
	case ops.KindInvalidRecord:
		return http.StatusBadRequest
	case ops.KindUnknownOperation:
		return http.StatusNotFound
	case ops.KindStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	kind := ops.Kind(err)
	writeJSON(w, StatusFor(kind), errorBody{Error: ops.RemoteError{Kind: kind, Message: err.Error()}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type exportQuery struct {
	Search string `validate:"max=200"`
	Column string `validate:"omitempty,max=40"`
	Sort   string `validate:"omitempty,max=40"`
	Order  string `validate:"omitempty,oneof=asc desc ASC DESC"`
	Name   string `validate:"omitempty,max=120,excludesall=/\\"`
}

var exportFormats = map[string]bool{"pdf": true, "xlsx": true, "csv": true}

// ExportHandler serves asset list exports.
type ExportHandler struct {
	svc    *application.Service
	logger *log.Logger
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc *application.Service, logger *log.Logger) *ExportHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ExportHandler{svc: svc, logger: logger}
}

// ServeHTTP handles GET /api/v1/exports/{variant}.{pdf|xlsx|csv}.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.svc == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}

	target := strings.TrimPrefix(r.URL.Path, exportsPrefix)
	dot := strings.LastIndex(target, ".")
	if dot <= 0 {
		http.Error(w, "expected /api/v1/exports/{variant}.{pdf|xlsx|csv}", http.StatusNotFound)
		return
	}
	format := strings.ToLower(target[dot+1:])
	if !exportFormats[format] {
		http.Error(w, fmt.Sprintf("unsupported format %q", format), http.StatusNotFound)
		return
	}
	variant, err := catalog.ParseVariant(target[:dot])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	fs, _ := variant.FieldSet()

	values := r.URL.Query()
	q := exportQuery{
		Search: values.Get("q"),
		Column: values.Get("column"),
		Sort:   values.Get("sort"),
		Order:  values.Get("order"),
		Name:   values.Get("filename"),
	}
	if err := validate.Struct(q); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	column := q.Column
	if column == "" {
		column = catalog.SearchAll
	}
	if column != catalog.SearchAll && !exportable(fs, catalog.Field(column)) {
		http.Error(w, fmt.Sprintf("unknown column %q", column), http.StatusBadRequest)
		return
	}
	if q.Sort != "" && !exportable(fs, catalog.Field(q.Sort)) {
		http.Error(w, fmt.Sprintf("unknown sort field %q", q.Sort), http.StatusBadRequest)
		return
	}

	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport(format, result, time.Since(start))
	}()

	listings, err := h.svc.ListAssets(r.Context(), variant)
	if err != nil {
		result = metrics.ResultError
		writeError(w, err)
		return
	}
	listings = catalog.SearchListings(listings, column, q.Search)
	if q.Sort != "" {
		listings = catalog.SortListings(listings, catalog.Field(q.Sort), catalog.ParseSortOrder(q.Order))
	}

	fileName := ExportFileName(fs, format)
	if q.Name != "" {
		fileName = q.Name
		if !strings.HasSuffix(strings.ToLower(fileName), "."+format) {
			fileName += "." + format
		}
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "pdf":
		data, err = BuildAssetListPDF(fs, listings)
		contentType = "application/pdf"
	case "xlsx":
		data, err = BuildAssetListXLSX(fs, listings)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		if err := WriteAssetListCSV(w, fs, listings); err != nil {
			result = metrics.ResultError
			h.logger.Printf("export %s csv: %v", variant, err)
		}
		return
	}
	if err != nil {
		result = metrics.ResultError
		h.logger.Printf("export %s %s: %v", variant, format, err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	_, _ = w.Write(data)
}

func exportable(fs catalog.FieldSet, field catalog.Field) bool {
	return field == catalog.FieldStationName || fs.Has(field)
}

// DashboardHandler serves totals and per-station chart series.
type DashboardHandler struct {
	svc *application.Service
}

// NewDashboardHandler constructs a DashboardHandler.
func NewDashboardHandler(svc *application.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// ServeHTTP handles GET /api/v1/dashboard.
func (h *DashboardHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h == nil || h.svc == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	dash, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// Checker reports store health.
type Checker interface {
	Check(ctx context.Context) error
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	checker Checker
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(checker Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.checker == nil {
		http.Error(w, "server not ready", http.StatusServiceUnavailable)
		return
	}
	if err := h.checker.Check(r.Context()); err != nil {
		if errors.Is(err, catalog.ErrStorageUnavailable) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_, _ = w.Write([]byte("ok"))
}

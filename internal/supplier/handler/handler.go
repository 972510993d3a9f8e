package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avend/stockroom/internal/middleware"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	"github.com/avend/stockroom/internal/supplier/domain"
	"github.com/avend/stockroom/internal/supplier/usecase/command"
	"github.com/avend/stockroom/internal/supplier/usecase/query"
	"github.com/avend/stockroom/pkg/logger"
)

// CacheFunc wraps a read endpoint with response caching
type CacheFunc func(http.HandlerFunc) http.HandlerFunc

// SupplierHandler handles HTTP requests for suppliers
type SupplierHandler struct {
	createHandler *command.CreateSupplierHandler
	updateHandler *command.UpdateSupplierHandler

	getHandler  *query.GetSupplierHandler
	listHandler *query.ListSuppliersHandler

	auth  *middleware.SessionAuth
	cache CacheFunc

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(
	createHandler *command.CreateSupplierHandler,
	updateHandler *command.UpdateSupplierHandler,
	repo domain.SupplierRepository,
	auth *middleware.SessionAuth,
	cache CacheFunc,
) *SupplierHandler {
	if cache == nil {
		cache = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "supplier_service_requests_total",
			Help: "Total number of requests to supplier service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "supplier_service_request_duration_seconds",
			Help:    "Duration of supplier service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)

	return &SupplierHandler{
		createHandler:  createHandler,
		updateHandler:  updateHandler,
		getHandler:     query.NewGetSupplierHandler(repo),
		listHandler:    query.NewListSuppliersHandler(repo),
		auth:           auth,
		cache:          cache,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *SupplierHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// CreateSupplier handles POST /suppliers
func (h *SupplierHandler) CreateSupplier(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.CreateSupplierCommand{
		ActorLevel: actor.AccountLevel,
		Name:       req.Name,
		Address:    req.Address,
	}

	supplier, err := h.createHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, supplier)
}

// GetSupplier handles GET /suppliers/{id}
func (h *SupplierHandler) GetSupplier(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}

	supplier, err := h.getHandler.Handle(query.GetSupplierQuery{SupplierID: uint(id)})
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, supplier)
}

// ListSuppliers handles GET /suppliers
func (h *SupplierHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	suppliers, err := h.listHandler.Handle(query.ListSuppliersQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list suppliers")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, suppliers)
}

// UpdateSupplier handles PUT /suppliers/{id}
func (h *SupplierHandler) UpdateSupplier(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid supplier ID")
		return
	}

	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cmd := command.UpdateSupplierCommand{
		ActorLevel: actor.AccountLevel,
		SupplierID: uint(id),
		Name:       req.Name,
		Address:    req.Address,
	}

	supplier, err := h.updateHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, supplier)
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, permdomain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// respondJSON sends a JSON response
func (h *SupplierHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *SupplierHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all supplier routes
func (h *SupplierHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/suppliers", h.metricsMiddleware("/suppliers", h.cache(h.ListSuppliers))).Methods("GET")
	router.HandleFunc("/suppliers/{id}", h.metricsMiddleware("/suppliers/{id}", h.GetSupplier)).Methods("GET")
	router.HandleFunc("/suppliers", h.metricsMiddleware("/suppliers", h.auth.RequireAuth(h.CreateSupplier))).Methods("POST")
	router.HandleFunc("/suppliers/{id}", h.metricsMiddleware("/suppliers/{id}", h.auth.RequireAuth(h.UpdateSupplier))).Methods("PUT")
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/avend/stockroom/internal/disposal/domain"
	"github.com/avend/stockroom/internal/disposal/usecase/command"
	"github.com/avend/stockroom/internal/disposal/usecase/query"
	"github.com/avend/stockroom/internal/middleware"
	permdomain "github.com/avend/stockroom/internal/permission/domain"
	userdomain "github.com/avend/stockroom/internal/user/domain"
	"github.com/avend/stockroom/kafka"
	"github.com/avend/stockroom/pkg/logger"
)

// CacheFunc wraps a read endpoint with response caching
type CacheFunc func(http.HandlerFunc) http.HandlerFunc

// DisposalHandler handles HTTP requests for stock write-offs
type DisposalHandler struct {
	recordHandler *command.RecordDisposalHandler

	getHandler  *query.GetDisposalHandler
	listHandler *query.ListDisposalsHandler

	auth      *middleware.SessionAuth
	cache     CacheFunc
	publisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	unitsDisposed  prometheus.Counter
}

// NewDisposalHandler creates a new disposal handler
func NewDisposalHandler(
	recordHandler *command.RecordDisposalHandler,
	repo domain.DisposalRepository,
	auth *middleware.SessionAuth,
	cache CacheFunc,
	publisher *kafka.Publisher,
) *DisposalHandler {
	if cache == nil {
		cache = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "disposal_service_requests_total",
			Help: "Total number of requests to disposal service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disposal_service_request_duration_seconds",
			Help:    "Duration of disposal service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	unitsDisposed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "disposal_service_units_disposed_total",
			Help: "Total units written off across all disposals",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(unitsDisposed)

	return &DisposalHandler{
		recordHandler:  recordHandler,
		getHandler:     query.NewGetDisposalHandler(repo),
		listHandler:    query.NewListDisposalsHandler(repo),
		auth:           auth,
		cache:          cache,
		publisher:      publisher,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		unitsDisposed:  unitsDisposed,
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
func (h *DisposalHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RecordDisposal handles POST /disposals
func (h *DisposalHandler) RecordDisposal(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Reason string `json:"reason"`
		Items  []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items := make([]command.LineItem, 0, len(req.Items))
	for _, line := range req.Items {
		items = append(items, command.LineItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	cmd := command.RecordDisposalCommand{
		ActorID:    actor.UserID,
		ActorLevel: actor.AccountLevel,
		Reason:     req.Reason,
		Items:      items,
	}

	disposal, err := h.recordHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	for _, report := range disposal.Reports {
		h.unitsDisposed.Add(float64(report.QuantityDisposed))
	}
	h.publishStockMovements(r, disposal, actor.UserID)
	h.respondJSON(w, http.StatusCreated, disposal)
}

// GetDisposal handles GET /disposals/{id}
func (h *DisposalHandler) GetDisposal(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid disposal ID")
		return
	}

	disposal, err := h.getHandler.Handle(query.GetDisposalQuery{DisposalID: uint(id)})
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, disposal)
}

// ListDisposals handles GET /disposals
func (h *DisposalHandler) ListDisposals(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	disposals, err := h.listHandler.Handle(query.ListDisposalsQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list disposals")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, disposals)
}

// publishStockMovements emits one event per disposed line item
func (h *DisposalHandler) publishStockMovements(r *http.Request, disposal *domain.DisposedInventory, actorID string) {
	if h.publisher == nil {
		return
	}

	for _, report := range disposal.Reports {
		event := kafka.StockMovementEvent{
			EventType:   kafka.EventTypeProductDisposed,
			ProductID:   report.ProductID,
			Quantity:    report.QuantityDisposed,
			ReferenceID: disposal.DisposalID,
			ActorID:     actorID,
		}
		if err := h.publisher.PublishStockMovement(r.Context(), event); err != nil {
			logger.Logger.Warn().
				Err(err).
				Uint("disposal_id", disposal.DisposalID).
				Uint("product_id", report.ProductID).
				Msg("Failed to publish disposal event")
		}
	}
}

// statusForError maps domain errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, userdomain.ErrNotFound):
		return http.StatusBadRequest
	case errors.Is(err, permdomain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}

// respondJSON sends a JSON response
func (h *DisposalHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *DisposalHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all disposal routes
func (h *DisposalHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/disposals", h.metricsMiddleware("/disposals", h.cache(h.ListDisposals))).Methods("GET")
	router.HandleFunc("/disposals/{id}", h.metricsMiddleware("/disposals/{id}", h.GetDisposal)).Methods("GET")
	router.HandleFunc("/disposals", h.metricsMiddleware("/disposals", h.auth.RequireAuth(h.RecordDisposal))).Methods("POST")
}

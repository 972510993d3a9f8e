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
	"github.com/avend/stockroom/internal/transaction/domain"
	"github.com/avend/stockroom/internal/transaction/usecase/command"
	"github.com/avend/stockroom/internal/transaction/usecase/query"
	"github.com/avend/stockroom/kafka"
	"github.com/avend/stockroom/pkg/logger"
)

// CacheFunc wraps a read endpoint with response caching
type CacheFunc func(http.HandlerFunc) http.HandlerFunc

// TransactionHandler handles HTTP requests for sales transactions
type TransactionHandler struct {
	recordHandler *command.RecordTransactionHandler

	getHandler  *query.GetTransactionHandler
	listHandler *query.ListTransactionsHandler

	auth      *middleware.SessionAuth
	cache     CacheFunc
	publisher *kafka.Publisher

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	unitsSold      prometheus.Counter
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	recordHandler *command.RecordTransactionHandler,
	repo domain.TransactionRepository,
	auth *middleware.SessionAuth,
	cache CacheFunc,
	publisher *kafka.Publisher,
) *TransactionHandler {
	if cache == nil {
		cache = func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "transaction_service_requests_total",
			Help: "Total number of requests to transaction service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "transaction_service_request_duration_seconds",
			Help:    "Duration of transaction service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	unitsSold := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "transaction_service_units_sold_total",
			Help: "Total units sold across all recorded transactions",
		},
	)

	prometheus.MustRegister(requestCounter)
	prometheus.MustRegister(requestLatency)
	prometheus.MustRegister(unitsSold)

	return &TransactionHandler{
		recordHandler:  recordHandler,
		getHandler:     query.NewGetTransactionHandler(repo),
		listHandler:    query.NewListTransactionsHandler(repo),
		auth:           auth,
		cache:          cache,
		publisher:      publisher,
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		unitsSold:      unitsSold,
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
func (h *TransactionHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
	}
}

// RecordTransaction handles POST /transactions
func (h *TransactionHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Date  time.Time `json:"date"`
		Items []struct {
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

	cmd := command.RecordTransactionCommand{
		ActorLevel: actor.AccountLevel,
		Date:       req.Date,
		Items:      items,
	}

	transaction, err := h.recordHandler.Handle(cmd)
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	for _, report := range transaction.Reports {
		h.unitsSold.Add(float64(report.QuantitySold))
	}
	h.publishStockMovements(r, transaction, actor.UserID)
	h.respondJSON(w, http.StatusCreated, transaction)
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["id"], 10, 32)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid transaction ID")
		return
	}

	transaction, err := h.getHandler.Handle(query.GetTransactionQuery{TransactionID: uint(id)})
	if err != nil {
		h.respondError(w, statusForError(err), err.Error())
		return
	}

	h.respondJSON(w, http.StatusOK, transaction)
}

// ListTransactions handles GET /transactions
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("skip"))

	transactions, err := h.listHandler.Handle(query.ListTransactionsQuery{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to list transactions")
		h.respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.respondJSON(w, http.StatusOK, transactions)
}

// publishStockMovements emits one event per sold line item
func (h *TransactionHandler) publishStockMovements(r *http.Request, transaction *domain.Transaction, actorID string) {
	if h.publisher == nil {
		return
	}

	for _, report := range transaction.Reports {
		event := kafka.StockMovementEvent{
			EventType:   kafka.EventTypeProductSold,
			ProductID:   report.ProductID,
			Quantity:    report.QuantitySold,
			ReferenceID: transaction.TransactionID,
			ActorID:     actorID,
		}
		if err := h.publisher.PublishStockMovement(r.Context(), event); err != nil {
			logger.Logger.Warn().
				Err(err).
				Uint("transaction_id", transaction.TransactionID).
				Uint("product_id", report.ProductID).
				Msg("Failed to publish sale event")
		}
	}
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
func (h *TransactionHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func (h *TransactionHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes registers all transaction routes
func (h *TransactionHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transactions", h.metricsMiddleware("/transactions", h.cache(h.ListTransactions))).Methods("GET")
	router.HandleFunc("/transactions/{id}", h.metricsMiddleware("/transactions/{id}", h.GetTransaction)).Methods("GET")
	router.HandleFunc("/transactions", h.metricsMiddleware("/transactions", h.auth.RequireAuth(h.RecordTransaction))).Methods("POST")
}

package query

import (
	"github.com/avend/stockroom/internal/permission"
)

// GetThresholdsQuery represents the query for the current thresholds
type GetThresholdsQuery struct{}

// GetThresholdsHandler handles the thresholds query
type GetThresholdsHandler struct {
	config *permission.Config
}

// NewGetThresholdsHandler creates a new get thresholds handler
func NewGetThresholdsHandler(config *permission.Config) *GetThresholdsHandler {
	return &GetThresholdsHandler{config: config}
}

// Handle executes the thresholds query
func (h *GetThresholdsHandler) Handle(query GetThresholdsQuery) map[string]int {
	return h.config.Snapshot()
}

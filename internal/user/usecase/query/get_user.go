package query

import (
	"github.com/avend/stockroom/internal/user/domain"
)

// GetUserQuery represents the query to get a user by id
type GetUserQuery struct {
	UserID string
}

// GetUserHandler handles get user query
type GetUserHandler struct {
	repo domain.UserRepository
}

// NewGetUserHandler creates a new get user handler
func NewGetUserHandler(repo domain.UserRepository) *GetUserHandler {
	return &GetUserHandler{repo: repo}
}

// Handle executes the get user query
func (h *GetUserHandler) Handle(query GetUserQuery) (*domain.User, error) {
	return h.repo.FindByID(query.UserID)
}

package ports

import (
	"context"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// RegisterInput carries the fields accepted at account creation.
type RegisterInput struct {
	Username       string
	Password       string
	Email          string
	Role           string
	ExternalChatID string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}

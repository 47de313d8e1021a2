package ports

import (
	"context"
	"time"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// UserRepository defines account persistence used by registration and login.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// MembershipRepository is the User Store as seen by the synchronizer.
// Every mutation is a field-scoped atomic update keyed by userID; no method
// reads and rewrites the whole document.
type MembershipRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.User, error)
	// FindBySubscriptionID returns the first user whose own or sponsored
	// subscription id equals subscriptionID.
	FindBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error)
	FindBySponsoredSubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error)
	FindByOwnSubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error)
	FindByExternalChatID(ctx context.Context, externalID string) (*domain.User, error)

	// LinkSponsorship records the donor subscription paying for userID.
	LinkSponsorship(ctx context.Context, userID, subscriptionID, donorID string) error
	// ApplySponsorshipGrant activates userID for the grant window. One-time
	// grants also overwrite sponsoredBy with domain.OneTimeGiftDonor.
	ApplySponsorshipGrant(ctx context.Context, userID string, grant domain.SponsorshipGrant) error
	// ApplyRenewal activates userID after a personal subscription payment.
	ApplyRenewal(ctx context.Context, userID string, paidAt time.Time) error
	// Suspend revokes access after a terminal subscription status.
	Suspend(ctx context.Context, userID string, status domain.SubscriptionStatus, reason string) error

	SetCreatorTypes(ctx context.Context, userID string, types []string) error
	SetSquareCustomerID(ctx context.Context, userID, customerID string) error
}

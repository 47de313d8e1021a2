package ports

import (
	"context"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// SponsorshipCheckoutInput requests a hosted checkout for sponsoring a member.
type SponsorshipCheckoutInput struct {
	RecipientID string
	DonorID     string
	Recurring   bool
	AmountCents int64
}

// MemberService covers the member-facing operations around the synchronizer:
// profile reads, creator categories and checkout links.
type MemberService interface {
	GetMember(ctx context.Context, userID string) (*domain.User, error)
	UpdateCreatorTypes(ctx context.Context, userID string, types []string) (*domain.User, error)
	SponsorshipCheckout(ctx context.Context, in SponsorshipCheckoutInput) (*PaymentLink, error)
	MembershipCheckout(ctx context.Context, userID string) (*PaymentLink, error)
}

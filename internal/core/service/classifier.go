package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// Classifier turns a payment into a domain.PaymentClass. Note patterns take
// precedence; a bare subscription id is resolved against the User Store.
type Classifier struct {
	repo ports.MembershipRepository
}

func NewClassifier(repo ports.MembershipRepository) *Classifier {
	return &Classifier{repo: repo}
}

// Classify only considers completed payments. Store failures other than
// domain.ErrUserNotFound are returned to the caller.
func (c *Classifier) Classify(ctx context.Context, in ports.PaymentInput) (domain.PaymentClass, error) {
	if in.Status != domain.PaymentStatusCompleted {
		return domain.PaymentClass{}, nil
	}

	class := domain.ParseSponsorshipNote(in.Note)
	class.SubscriptionID = in.SubscriptionID
	if class.Kind != domain.PaymentUnknown {
		return class, nil
	}

	if in.SubscriptionID == "" {
		return class, nil
	}

	sponsored, err := c.repo.FindBySponsoredSubscriptionID(ctx, in.SubscriptionID)
	switch {
	case err == nil:
		donor := sponsored.Membership.SponsoredBy
		if donor == "" {
			donor = domain.AnonymousDonor
		}
		return domain.PaymentClass{
			Kind:           domain.PaymentSponsorshipRenewal,
			RecipientID:    sponsored.UserID,
			DonorID:        donor,
			SubscriptionID: in.SubscriptionID,
		}, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return class, fmt.Errorf("classify payment: %w", err)
	}

	owner, err := c.repo.FindByOwnSubscriptionID(ctx, in.SubscriptionID)
	switch {
	case err == nil:
		return domain.PaymentClass{
			Kind:           domain.PaymentPersonalRenewal,
			RecipientID:    owner.UserID,
			SubscriptionID: in.SubscriptionID,
		}, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return class, fmt.Errorf("classify payment: %w", err)
	}

	return class, nil
}

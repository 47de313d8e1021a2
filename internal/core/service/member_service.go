package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

// CheckoutConfig holds the catalogue settings used to build payment links.
type CheckoutConfig struct {
	Currency              string
	MembershipAmountCents int64
	MembershipPlanID      string
	SponsorshipPlanID     string
	RedirectURL           string
}

// MemberService serves member profile reads, creator categories and the
// checkout links whose notes the synchronizer later decodes.
type MemberService struct {
	users    ports.MembershipRepository
	roles    ports.RoleSyncService
	payments ports.PaymentGateway
	checkout CheckoutConfig
	log      zerolog.Logger
}

func NewMemberService(
	users ports.MembershipRepository,
	roles ports.RoleSyncService,
	payments ports.PaymentGateway,
	checkout CheckoutConfig,
	log zerolog.Logger,
) *MemberService {
	if checkout.Currency == "" {
		checkout.Currency = "USD"
	}
	return &MemberService{users: users, roles: roles, payments: payments, checkout: checkout, log: log}
}

func (s *MemberService) GetMember(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByUserID(ctx, userID)
}

// UpdateCreatorTypes stores the selection and re-syncs creator roles. Role
// sync failures are logged; the stored selection stands.
func (s *MemberService) UpdateCreatorTypes(ctx context.Context, userID string, types []string) (*domain.User, error) {
	if err := s.users.SetCreatorTypes(ctx, userID, types); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if user.ExternalChatID != "" {
		if err := s.roles.SyncCreatorRoles(ctx, user.ExternalChatID, user.CreatorTypes); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("creator role sync incomplete")
		}
	}
	return user, nil
}

// SponsorshipCheckout creates a payment link whose note attributes the
// payment to the recipient (and donor, for recurring sponsorships).
func (s *MemberService) SponsorshipCheckout(ctx context.Context, in ports.SponsorshipCheckoutInput) (*ports.PaymentLink, error) {
	recipient, err := s.users.FindByUserID(ctx, in.RecipientID)
	if err != nil {
		return nil, err
	}

	amount := in.AmountCents
	if amount <= 0 {
		amount = s.checkout.MembershipAmountCents
	}

	link := ports.PaymentLinkInput{
		Name:        fmt.Sprintf("Membership sponsorship for %s", recipient.Username),
		AmountCents: amount,
		Currency:    s.checkout.Currency,
		Note:        domain.OneTimeSponsorshipNote(recipient.UserID),
		RedirectURL: s.checkout.RedirectURL,
	}
	if in.Recurring {
		link.Name = fmt.Sprintf("Monthly membership sponsorship for %s", recipient.Username)
		link.Note = domain.SponsorshipSubNote(recipient.UserID, in.DonorID)
		link.SubscriptionPlanID = s.checkout.SponsorshipPlanID
	}

	out, err := s.payments.CreatePaymentLink(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("sponsorship checkout: %w", err)
	}

	s.log.Info().
		Str("recipient", recipient.UserID).
		Str("donor", in.DonorID).
		Bool("recurring", in.Recurring).
		Str("link_id", out.ID).
		Msg("sponsorship checkout created")
	return out, nil
}

// MembershipCheckout ensures the member has a provider customer and returns
// a link to the personal membership subscription.
func (s *MemberService) MembershipCheckout(ctx context.Context, userID string) (*ports.PaymentLink, error) {
	user, err := s.users.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID := user.SquareCustomerID
	if customerID == "" {
		customerID, err = s.payments.CreateCustomer(ctx, ports.CustomerInput{
			ReferenceID: user.UserID,
			GivenName:   user.Username,
			Email:       user.Email,
		})
		if err != nil {
			return nil, fmt.Errorf("membership checkout: create customer: %w", err)
		}
		if err := s.users.SetSquareCustomerID(ctx, user.UserID, customerID); err != nil {
			return nil, fmt.Errorf("membership checkout: store customer: %w", err)
		}
	}

	out, err := s.payments.CreatePaymentLink(ctx, ports.PaymentLinkInput{
		Name:               "Makerspace membership",
		AmountCents:        s.checkout.MembershipAmountCents,
		Currency:           s.checkout.Currency,
		CustomerID:         customerID,
		SubscriptionPlanID: s.checkout.MembershipPlanID,
		RedirectURL:        s.checkout.RedirectURL,
	})
	if err != nil {
		return nil, fmt.Errorf("membership checkout: %w", err)
	}
	return out, nil
}

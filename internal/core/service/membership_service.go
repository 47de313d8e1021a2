package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/core/domain"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	pauseReason      = "Member Sponsorship Gift"
	providerDateForm = "2006-01-02"
	pauseWindowDays  = 30
)

// MembershipService applies payment provider webhook events to the User
// Store. Every write is an absolute field assignment, so replaying an event
// converges on the same state.
type MembershipService struct {
	repo       ports.MembershipRepository
	classifier *Classifier
	payments   ports.PaymentGateway
	roles      ports.RoleSyncDispatcher
	reconcile  ports.ReconcileQueue
	publisher  ports.EventPublisher
	log        zerolog.Logger
	now        func() time.Time
}

func NewMembershipService(
	repo ports.MembershipRepository,
	payments ports.PaymentGateway,
	roles ports.RoleSyncDispatcher,
	reconcile ports.ReconcileQueue,
	publisher ports.EventPublisher,
	log zerolog.Logger,
) *MembershipService {
	return &MembershipService{
		repo:       repo,
		classifier: NewClassifier(repo),
		payments:   payments,
		roles:      roles,
		reconcile:  reconcile,
		publisher:  publisher,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// HandlePayment processes payment.updated. Unclassifiable payments and
// unknown recipients are acknowledged without mutation.
func (s *MembershipService) HandlePayment(ctx context.Context, in ports.PaymentInput) (*ports.SyncResult, error) {
	class, err := s.classifier.Classify(ctx, in)
	if err != nil {
		return nil, err
	}

	result := &ports.SyncResult{Outcome: ports.OutcomeIgnored, Kind: class.Kind, UserID: class.RecipientID}
	if class.Kind == domain.PaymentUnknown {
		s.log.Info().
			Str("payment_id", in.PaymentID).
			Str("payment_status", in.Status).
			Str("subscription_id", in.SubscriptionID).
			Msg("payment not attributable to a member, ignoring")
		return result, nil
	}

	user, err := s.repo.FindByUserID(ctx, class.RecipientID)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Warn().
			Str("payment_id", in.PaymentID).
			Str("kind", class.Kind.String()).
			Str("recipient", class.RecipientID).
			Msg("payment recipient not found")
		result.Outcome = ports.OutcomeUnmatched
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("handle payment: %w", err)
	}

	now := s.now()

	if class.Kind == domain.PaymentPersonalRenewal {
		if err := s.repo.ApplyRenewal(ctx, user.UserID, now); err != nil {
			return nil, fmt.Errorf("handle payment: apply renewal: %w", err)
		}
		s.log.Info().
			Str("user_id", user.UserID).
			Str("subscription_id", class.SubscriptionID).
			Msg("personal subscription renewed")
		result.Outcome = ports.OutcomeRenewed
		s.afterChange(ctx, user, result, domain.MembershipActive, domain.SubscriptionActive)
		return result, nil
	}

	if class.Kind == domain.PaymentSponsorshipFirstCharge {
		if class.SubscriptionID == "" {
			s.log.Warn().
				Str("payment_id", in.PaymentID).
				Str("recipient", user.UserID).
				Msg("recurring sponsorship payment without subscription id, granting without link")
		} else if err := s.repo.LinkSponsorship(ctx, user.UserID, class.SubscriptionID, class.DonorID); err != nil {
			return nil, fmt.Errorf("handle payment: link sponsorship: %w", err)
		}
	}

	grant := domain.SponsorshipGrant{
		Recurring: class.Kind.IsRecurring(),
		ExpiresAt: now.Add(domain.SponsorshipWindow),
		PaidAt:    now,
	}

	if user.HasOwnSubscription(class.SubscriptionID) {
		if err := s.pauseOwnSubscription(ctx, user.Membership.SquareSubscriptionID); err != nil {
			result.PauseFailed = true
			s.log.Error().Err(err).
				Str("user_id", user.UserID).
				Str("subscription_id", user.Membership.SquareSubscriptionID).
				Msg("failed to pause own subscription, granting sponsorship anyway")
			s.enqueuePause(ctx, user.UserID, user.Membership.SquareSubscriptionID, err)
		}
	}

	if err := s.repo.ApplySponsorshipGrant(ctx, user.UserID, grant); err != nil {
		return nil, fmt.Errorf("handle payment: apply grant: %w", err)
	}

	s.log.Info().
		Str("user_id", user.UserID).
		Str("kind", class.Kind.String()).
		Str("donor", class.DonorID).
		Time("expires_at", grant.ExpiresAt).
		Msg("sponsorship granted")

	result.Outcome = ports.OutcomeGranted
	s.afterChange(ctx, user, result, domain.MembershipActive, grant.SubscriptionStatusLabel())
	return result, nil
}

// HandleSubscription processes subscription.updated. Only terminal statuses
// act; the first user whose own or sponsored subscription matches is suspended.
func (s *MembershipService) HandleSubscription(ctx context.Context, in ports.SubscriptionInput) (*ports.SyncResult, error) {
	status := domain.SubscriptionStatus(in.Status)
	result := &ports.SyncResult{Outcome: ports.OutcomeIgnored}
	if !status.Revokes() {
		s.log.Debug().
			Str("subscription_id", in.SubscriptionID).
			Str("status", in.Status).
			Msg("subscription status does not revoke access")
		return result, nil
	}

	user, err := s.repo.FindBySubscriptionID(ctx, in.SubscriptionID)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.log.Info().
			Str("subscription_id", in.SubscriptionID).
			Str("status", in.Status).
			Msg("no member holds subscription, nothing to revoke")
		result.Outcome = ports.OutcomeUnmatched
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("handle subscription: %w", err)
	}

	if err := s.repo.Suspend(ctx, user.UserID, status, domain.RevokedReason(status)); err != nil {
		return nil, fmt.Errorf("handle subscription: suspend: %w", err)
	}

	s.log.Info().
		Str("user_id", user.UserID).
		Str("subscription_id", in.SubscriptionID).
		Str("status", in.Status).
		Msg("membership suspended")

	result.Outcome = ports.OutcomeSuspended
	result.UserID = user.UserID
	s.afterChange(ctx, user, result, domain.MembershipSuspended, status)
	return result, nil
}

// pauseOwnSubscription pauses the recipient's personal subscription for one
// sponsorship window starting at its charged-through date.
func (s *MembershipService) pauseOwnSubscription(ctx context.Context, subscriptionID string) error {
	req, ok, err := planPause(ctx, s.payments, subscriptionID)
	if err != nil || !ok {
		return err
	}
	return s.payments.PauseSubscription(ctx, *req)
}

// planPause returns ok=false when the provider reports a subscription that
// should not be paused (not ACTIVE or no charged-through date).
func planPause(ctx context.Context, payments ports.PaymentGateway, subscriptionID string) (*ports.PauseRequest, bool, error) {
	sub, err := payments.RetrieveSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, false, fmt.Errorf("retrieve subscription: %w", err)
	}
	if sub.Status != string(domain.SubscriptionActive) || sub.ChargedThroughDate == "" {
		return nil, false, nil
	}

	resume, err := addDays(sub.ChargedThroughDate, pauseWindowDays)
	if err != nil {
		return nil, false, err
	}

	return &ports.PauseRequest{
		SubscriptionID:      subscriptionID,
		PauseEffectiveDate:  sub.ChargedThroughDate,
		ResumeEffectiveDate: resume,
		Reason:              pauseReason,
	}, true, nil
}

func addDays(date string, days int) (string, error) {
	t, err := time.Parse(providerDateForm, date)
	if err != nil {
		return "", fmt.Errorf("parse charged through date %q: %w", date, err)
	}
	return t.AddDate(0, 0, days).Format(providerDateForm), nil
}

// enqueuePause queues the pause by identity. The replay re-reads the member
// and pauses only while the sponsorship still holds.
func (s *MembershipService) enqueuePause(ctx context.Context, userID, subscriptionID string, cause error) {
	job := ports.ReconcileJob{
		Kind:           ports.ReconcileSubscriptionPause,
		UserID:         userID,
		SubscriptionID: subscriptionID,
		LastError:      cause.Error(),
		EnqueuedAt:     s.now(),
	}
	if err := s.reconcile.Push(ctx, job); err != nil {
		s.log.Error().Err(err).Str("subscription_id", subscriptionID).Msg("failed to enqueue pause for reconciliation")
	}
}

// afterChange fans the new state out to the chat platform and the event
// bus. Neither can fail the webhook.
func (s *MembershipService) afterChange(
	ctx context.Context,
	user *domain.User,
	result *ports.SyncResult,
	status domain.MembershipStatus,
	subStatus domain.SubscriptionStatus,
) {
	if user.ExternalChatID != "" {
		s.roles.Enqueue(ports.RoleSyncJob{
			UserID:     user.UserID,
			ExternalID: user.ExternalChatID,
			Status:     status,
		})
	}

	evt := ports.MembershipEvent{
		UserID:             user.UserID,
		Outcome:            string(result.Outcome),
		Status:             string(status),
		SubscriptionStatus: string(subStatus),
		OccurredAt:         s.now(),
	}
	if result.Kind != domain.PaymentUnknown {
		evt.Kind = result.Kind.String()
	}
	if err := s.publisher.PublishMembershipEvent(ctx, evt); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.UserID).Msg("failed to publish membership event")
	}
}

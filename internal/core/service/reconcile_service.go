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
	defaultMaxAttempts = 5
	requeueTimeout     = 5 * time.Second
)

// errNotNeeded marks a job whose target state no longer calls for it.
var errNotNeeded = errors.New("no longer needed")

// ReconcileService replays external work that failed during webhook
// handling or role sync. Jobs name a member, and every replay reads that
// member's current state first.
type ReconcileService struct {
	queue       ports.ReconcileQueue
	roles       ports.RoleReconciler
	users       ports.MembershipRepository
	payments    ports.PaymentGateway
	maxAttempts int
	log         zerolog.Logger
	now         func() time.Time
}

func NewReconcileService(
	queue ports.ReconcileQueue,
	roles ports.RoleReconciler,
	users ports.MembershipRepository,
	payments ports.PaymentGateway,
	maxAttempts int,
	log zerolog.Logger,
) *ReconcileService {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &ReconcileService{
		queue:       queue,
		roles:       roles,
		users:       users,
		payments:    payments,
		maxAttempts: maxAttempts,
		log:         log,
		now:         time.Now,
	}
}

// Drain pops at most limit jobs. A job that fails again is pushed back with
// its attempt count raised until maxAttempts, then dropped.
func (s *ReconcileService) Drain(ctx context.Context, limit int) (*ports.DrainResult, error) {
	res := &ports.DrainResult{}
	var (
		retry  []ports.ReconcileJob
		popErr error
	)
	for i := 0; i < limit; i++ {
		if ctx.Err() != nil {
			break
		}

		job, err := s.queue.Pop(ctx)
		if err != nil {
			popErr = fmt.Errorf("reconcile drain: %w", err)
			break
		}
		if job == nil {
			break
		}
		res.Processed++

		replayErr := s.replay(ctx, job)
		switch {
		case replayErr == nil:
			res.Succeeded++
			continue
		case errors.Is(replayErr, errNotNeeded):
			res.Skipped++
			s.jobLog(s.log.Info(), job).Err(replayErr).Msg("reconciliation job skipped")
			continue
		}

		job.Attempts++
		job.LastError = replayErr.Error()

		if job.Attempts >= s.maxAttempts || errors.Is(replayErr, domain.ErrNoChatAccount) {
			res.Dropped++
			s.jobLog(s.log.Error(), job).Msg("reconciliation job exhausted, dropping")
			continue
		}
		retry = append(retry, *job)
	}

	requeueErr := s.requeue(ctx, retry, res)

	if res.Processed > 0 {
		s.log.Info().
			Int("processed", res.Processed).
			Int("succeeded", res.Succeeded).
			Int("skipped", res.Skipped).
			Int("requeued", res.Requeued).
			Int("dropped", res.Dropped).
			Int("lost", res.Lost).
			Msg("reconciliation pass finished")
	}
	return res, errors.Join(popErr, requeueErr)
}

// requeue pushes failed jobs back after the pass so one pass never replays
// the same job twice. It outlives a cancelled pass, and a job that cannot
// be pushed is logged in full before the next one is tried.
func (s *ReconcileService) requeue(ctx context.Context, jobs []ports.ReconcileJob, res *ports.DrainResult) error {
	if len(jobs) == 0 {
		return nil
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()

	var errs []error
	for _, job := range jobs {
		if err := s.queue.Push(pctx, job); err != nil {
			res.Lost++
			errs = append(errs, err)
			s.jobLog(s.log.Error(), &job).Err(err).Msg("failed to requeue reconciliation job, job lost")
			continue
		}
		res.Requeued++
	}
	if len(errs) > 0 {
		return fmt.Errorf("reconcile requeue: %w", errors.Join(errs...))
	}
	return nil
}

func (s *ReconcileService) replay(ctx context.Context, job *ports.ReconcileJob) error {
	switch job.Kind {
	case ports.ReconcileRoleSync:
		if job.ExternalID == "" {
			return errNotNeeded
		}
		return s.roles.ResyncExternal(ctx, job.ExternalID)
	case ports.ReconcileSubscriptionPause:
		return s.replayPause(ctx, job)
	default:
		return fmt.Errorf("job kind %q: %w", job.Kind, errNotNeeded)
	}
}

// replayPause pauses the member's own subscription only while they are
// still sponsored and still own it. Dates come from the provider again
// because the charged-through date may have moved.
func (s *ReconcileService) replayPause(ctx context.Context, job *ports.ReconcileJob) error {
	if job.UserID == "" || job.SubscriptionID == "" {
		return errNotNeeded
	}
	user, err := s.users.FindByUserID(ctx, job.UserID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("user %s: %w", job.UserID, errNotNeeded)
	}
	if err != nil {
		return err
	}
	if user.Membership.SquareSubscriptionID != job.SubscriptionID {
		return fmt.Errorf("subscription %s no longer owned: %w", job.SubscriptionID, errNotNeeded)
	}
	if !user.Membership.SponsoredAt(s.now()) {
		return fmt.Errorf("sponsorship ended: %w", errNotNeeded)
	}

	req, ok, err := planPause(ctx, s.payments, job.SubscriptionID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("subscription %s not pausable: %w", job.SubscriptionID, errNotNeeded)
	}
	return s.payments.PauseSubscription(ctx, *req)
}

func (s *ReconcileService) jobLog(evt *zerolog.Event, job *ports.ReconcileJob) *zerolog.Event {
	return evt.
		Str("kind", string(job.Kind)).
		Str("user_id", job.UserID).
		Str("external_id", job.ExternalID).
		Str("subscription_id", job.SubscriptionID).
		Int("attempts", job.Attempts).
		Str("last_error", job.LastError)
}

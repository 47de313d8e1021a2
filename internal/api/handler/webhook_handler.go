package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/makerspace/membership-service/internal/api/metrics"
	"github.com/makerspace/membership-service/internal/core/ports"
)

const (
	eventPaymentUpdated      = "payment.updated"
	eventSubscriptionUpdated = "subscription.updated"

	releaseTimeout = 5 * time.Second
)

// WebhookHandler receives Square webhooks and hands them to the membership
// synchronizer. Every handled or ignored event is acknowledged with 200 so
// the provider does not retry partially processed events.
type WebhookHandler struct {
	membership ports.MembershipService
	dedup      ports.WebhookDeduper
	audit      ports.WebhookEventRepository
	log        zerolog.Logger
	now        func() time.Time
}

func NewWebhookHandler(
	membership ports.MembershipService,
	dedup ports.WebhookDeduper,
	audit ports.WebhookEventRepository,
	log zerolog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		membership: membership,
		dedup:      dedup,
		audit:      audit,
		log:        log,
		now:        time.Now,
	}
}

// Square handles POST /webhooks/square.
//
// @Summary      Square webhook receiver
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        body  body      webhookRequest  true  "Square event"
// @Success      200   {object}  successResponse
// @Failure      401   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /webhooks/square [post]
func (h *WebhookHandler) Square(c echo.Context) error {
	start := h.now()
	ctx := c.Request().Context()

	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		h.log.Warn().Err(err).Msg("malformed webhook payload ignored")
		metrics.WebhooksTotal.WithLabelValues("malformed", string(ports.OutcomeIgnored)).Inc()
		return c.JSON(http.StatusOK, successResponse{Success: true})
	}
	defer func() {
		metrics.WebhookProcessingDuration.WithLabelValues(req.Type).Observe(time.Since(start).Seconds())
	}()

	log := h.log.With().Str("event_id", req.EventID).Str("type", req.Type).Logger()

	// A held claim is released unless processing completes, including when
	// a panic unwinds through here, so the provider's retry is processed.
	var claimed, processed bool
	defer func() {
		if claimed && !processed {
			h.release(ctx, req.EventID, log)
		}
	}()

	if req.EventID != "" {
		fresh, err := h.dedup.Acquire(ctx, req.EventID)
		switch {
		case err != nil:
			// Writes are absolute, so processing a possible duplicate is safe.
			log.Warn().Err(err).Msg("webhook dedup unavailable, processing anyway")
		case !fresh:
			log.Debug().Msg("duplicate webhook skipped")
			metrics.WebhooksTotal.WithLabelValues(req.Type, "duplicate").Inc()
			return c.JSON(http.StatusOK, successResponse{Success: true})
		default:
			claimed = true
		}
	}

	res, objectID, err := h.dispatch(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("object_id", objectID).Msg("webhook processing failed")
		metrics.WebhooksTotal.WithLabelValues(req.Type, "error").Inc()
		h.record(ctx, req, objectID, nil, err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "webhook processing failed"})
	}

	processed = true
	metrics.WebhooksTotal.WithLabelValues(req.Type, string(res.Outcome)).Inc()
	if req.Type == eventPaymentUpdated {
		metrics.PaymentsClassifiedTotal.WithLabelValues(res.Kind.String()).Inc()
	}
	if res.PauseFailed {
		metrics.SubscriptionPauseFailuresTotal.Inc()
	}

	log.Info().
		Str("object_id", objectID).
		Str("outcome", string(res.Outcome)).
		Str("kind", res.Kind.String()).
		Str("user_id", res.UserID).
		Msg("webhook processed")

	h.record(ctx, req, objectID, res, nil)
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *WebhookHandler) dispatch(ctx context.Context, req webhookRequest) (*ports.SyncResult, string, error) {
	switch req.Type {
	case eventPaymentUpdated:
		p := req.Data.Object.Payment
		if p == nil {
			return &ports.SyncResult{Outcome: ports.OutcomeIgnored}, req.Data.ID, nil
		}
		res, err := h.membership.HandlePayment(ctx, p.toInput(req.EventID))
		return res, p.ID, err
	case eventSubscriptionUpdated:
		s := req.Data.Object.Subscription
		if s == nil {
			return &ports.SyncResult{Outcome: ports.OutcomeIgnored}, req.Data.ID, nil
		}
		res, err := h.membership.HandleSubscription(ctx, s.toInput(req.EventID))
		return res, s.ID, err
	default:
		return &ports.SyncResult{Outcome: ports.OutcomeIgnored}, req.Data.ID, nil
	}
}

// release drops the dedup claim. It runs after the request context may have
// been cancelled by a provider timeout, so it uses a detached context.
func (h *WebhookHandler) release(ctx context.Context, eventID string, log zerolog.Logger) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := h.dedup.Release(rctx, eventID); err != nil {
		log.Error().Err(err).Msg("failed to release webhook dedup claim, provider retries will be skipped until it expires")
	}
}

// record writes the audit entry. Failures are logged only.
func (h *WebhookHandler) record(ctx context.Context, req webhookRequest, objectID string, res *ports.SyncResult, procErr error) {
	rec := &ports.WebhookRecord{
		EventID:    req.EventID,
		Type:       req.Type,
		ObjectID:   objectID,
		ReceivedAt: h.now().UTC(),
	}
	if res != nil {
		rec.Outcome = res.Outcome
		rec.UserID = res.UserID
		if req.Type == eventPaymentUpdated {
			rec.Kind = res.Kind.String()
		}
	}
	if procErr != nil {
		rec.Outcome = "error"
		rec.Error = procErr.Error()
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := h.audit.Insert(actx, rec); err != nil {
		h.log.Warn().Err(err).Str("event_id", req.EventID).Msg("failed to store webhook audit record")
	}
}

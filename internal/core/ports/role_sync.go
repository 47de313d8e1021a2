package ports

import (
	"context"
	"time"

	"github.com/makerspace/membership-service/internal/core/domain"
)

// RoleSyncService projects local membership and creator state onto
// chat-platform roles. Every call reconciles fully; nothing is diffed.
type RoleSyncService interface {
	SyncMembershipRole(ctx context.Context, externalID string, status domain.MembershipStatus) error
	SyncCreatorRoles(ctx context.Context, externalID string, selected []string) error
	// SyncUser loads userID and runs both syncs.
	SyncUser(ctx context.Context, userID string) error
}

// RoleReconciler re-derives a member's roles from the stored user. It is
// the replay path for queued role work and never queues itself.
type RoleReconciler interface {
	ResyncExternal(ctx context.Context, externalID string) error
}

// RoleSyncJob asks the dispatcher to re-sync one member's roles.
type RoleSyncJob struct {
	UserID     string
	ExternalID string
	Status     domain.MembershipStatus
}

// RoleSyncDispatcher accepts role-sync work without blocking the caller on
// the chat platform.
type RoleSyncDispatcher interface {
	Enqueue(job RoleSyncJob)
}

// ReconcileKind names the external state a job brings back in line.
type ReconcileKind string

const (
	// ReconcileRoleSync re-syncs every role of the member with ExternalID.
	ReconcileRoleSync ReconcileKind = "role_sync"
	// ReconcileSubscriptionPause pauses UserID's own SubscriptionID if the
	// member is still sponsored when the job runs.
	ReconcileSubscriptionPause ReconcileKind = "subscription_pause"
)

// ReconcileJob names who needs reconciling, never the call that failed.
// Replays read current state, so a job that outlives a later change cannot
// undo it.
type ReconcileJob struct {
	Kind           ReconcileKind `json:"kind"`
	UserID         string        `json:"user_id,omitempty"`
	ExternalID     string        `json:"external_id,omitempty"`
	SubscriptionID string        `json:"subscription_id,omitempty"`
	Attempts       int           `json:"attempts"`
	LastError      string        `json:"last_error,omitempty"`
	EnqueuedAt     time.Time     `json:"enqueued_at"`
}

// ReconcileQueue stores failed external calls for later replay.
type ReconcileQueue interface {
	Push(ctx context.Context, job ReconcileJob) error
	// Pop returns nil, nil when the queue is empty.
	Pop(ctx context.Context) (*ReconcileJob, error)
	Len(ctx context.Context) (int64, error)
}

// DrainResult summarises one reconciliation pass.
type DrainResult struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Requeued  int `json:"requeued"`
	Dropped   int `json:"dropped"`
	// Skipped jobs were no longer needed when replayed.
	Skipped int `json:"skipped"`
	// Lost jobs failed and could not be pushed back.
	Lost int `json:"lost"`
}

// ReconcileService replays queued external calls.
type ReconcileService interface {
	Drain(ctx context.Context, limit int) (*DrainResult, error)
}

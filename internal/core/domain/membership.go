package domain

import (
	"errors"
	"time"
)

// MembershipStatus is the local access lifecycle of a member.
type MembershipStatus string

const (
	MembershipNone      MembershipStatus = "none"
	MembershipActive    MembershipStatus = "active"
	MembershipProbation MembershipStatus = "probation"
	MembershipSuspended MembershipStatus = "suspended"
)

// GrantsCommunityRole reports whether members in this status hold the
// community member role on the chat platform.
func (s MembershipStatus) GrantsCommunityRole() bool {
	return s == MembershipActive || s == MembershipProbation
}

// SubscriptionStatus is the provider lifecycle label stored on a member.
// SPONSORED and SPONSORED_RECURRING are synthesized locally.
type SubscriptionStatus string

const (
	SubscriptionActive             SubscriptionStatus = "ACTIVE"
	SubscriptionCanceled           SubscriptionStatus = "CANCELED"
	SubscriptionDeactivated        SubscriptionStatus = "DEACTIVATED"
	SubscriptionPastDue            SubscriptionStatus = "PAST_DUE"
	SubscriptionSponsored          SubscriptionStatus = "SPONSORED"
	SubscriptionSponsoredRecurring SubscriptionStatus = "SPONSORED_RECURRING"
)

// Revokes reports whether a provider-reported status ends access.
func (s SubscriptionStatus) Revokes() bool {
	switch s {
	case SubscriptionCanceled, SubscriptionDeactivated, SubscriptionPastDue:
		return true
	}
	return false
}

// OneTimeGiftDonor is the sponsoredBy attribution for one-time sponsorships.
const OneTimeGiftDonor = "OneTimeGift"

// SponsorshipWindow is the access granted per accepted sponsorship payment.
const SponsorshipWindow = 30 * 24 * time.Hour

// AccessKey gates physical and digital access independently of billing.
type AccessKey struct {
	Issued        bool   `json:"issued" bson:"issued"`
	RevokedReason string `json:"revoked_reason,omitempty" bson:"revokedReason,omitempty"`
}

// Membership is the billing and access state embedded in a User.
type Membership struct {
	Status                  MembershipStatus   `json:"status" bson:"status"`
	SubscriptionStatus      SubscriptionStatus `json:"subscription_status,omitempty" bson:"subscriptionStatus,omitempty"`
	SquareSubscriptionID    string             `json:"square_subscription_id,omitempty" bson:"squareSubscriptionId,omitempty"`
	SponsoredSubscriptionID string             `json:"sponsored_subscription_id,omitempty" bson:"sponsoredSubscriptionId,omitempty"`
	SponsoredBy             string             `json:"sponsored_by,omitempty" bson:"sponsoredBy,omitempty"`
	SponsorshipExpiresAt    *time.Time         `json:"sponsorship_expires_at,omitempty" bson:"sponsorshipExpiresAt,omitempty"`
	LastPaymentDate         *time.Time         `json:"last_payment_date,omitempty" bson:"lastPaymentDate,omitempty"`
	AccessKey               AccessKey          `json:"access_key" bson:"accessKey"`
}

// SponsoredAt reports whether a sponsorship grant is in force at now.
func (m Membership) SponsoredAt(now time.Time) bool {
	if m.Status != MembershipActive {
		return false
	}
	if m.SubscriptionStatus != SubscriptionSponsored && m.SubscriptionStatus != SubscriptionSponsoredRecurring {
		return false
	}
	return m.SponsorshipExpiresAt != nil && now.Before(*m.SponsorshipExpiresAt)
}

// SponsorshipGrant is the absolute state written when a sponsorship payment
// is accepted.
type SponsorshipGrant struct {
	Recurring bool
	ExpiresAt time.Time
	PaidAt    time.Time
}

// SubscriptionStatusLabel returns the label stored for this grant.
func (g SponsorshipGrant) SubscriptionStatusLabel() SubscriptionStatus {
	if g.Recurring {
		return SubscriptionSponsoredRecurring
	}
	return SubscriptionSponsored
}

// RevokedReason is the audit note written when a subscription status ends access.
func RevokedReason(status SubscriptionStatus) string {
	return "Subscription " + string(status)
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrForbidden            = errors.New("access forbidden")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNoChatAccount        = errors.New("user has no linked chat account")
	ErrMembershipInactive   = errors.New("membership is not active")
	ErrAlreadyInGuild       = errors.New("member already joined the chat server")
	ErrChannelNotFound      = errors.New("chat channel not found")
)

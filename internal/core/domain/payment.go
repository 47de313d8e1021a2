package domain

import (
	"regexp"
	"strings"
)

// PaymentKind is the semantic category of a completed payment.
type PaymentKind int

const (
	PaymentUnknown PaymentKind = iota
	PaymentPersonalRenewal
	PaymentSponsorshipFirstCharge
	PaymentSponsorshipOneTime
	PaymentSponsorshipRenewal
)

func (k PaymentKind) String() string {
	switch k {
	case PaymentPersonalRenewal:
		return "personal_renewal"
	case PaymentSponsorshipFirstCharge:
		return "sponsorship_first_charge"
	case PaymentSponsorshipOneTime:
		return "sponsorship_one_time"
	case PaymentSponsorshipRenewal:
		return "sponsorship_renewal"
	default:
		return "unknown"
	}
}

// IsSponsorship reports whether the payment grants access on someone else's behalf.
func (k PaymentKind) IsSponsorship() bool {
	switch k {
	case PaymentSponsorshipFirstCharge, PaymentSponsorshipOneTime, PaymentSponsorshipRenewal:
		return true
	}
	return false
}

// IsRecurring reports whether the sponsorship is backed by a donor subscription.
func (k PaymentKind) IsRecurring() bool {
	return k == PaymentSponsorshipFirstCharge || k == PaymentSponsorshipRenewal
}

// PaymentClass is the tagged result of classifying one payment.
// RecipientID is the affected user; DonorID is only set for sponsorships.
type PaymentClass struct {
	Kind           PaymentKind
	RecipientID    string
	DonorID        string
	SubscriptionID string
}

// AnonymousDonor is used when a recurring sponsorship note carries no donor.
const AnonymousDonor = "Anonymous"

// PaymentStatusCompleted is the only payment status that grants access.
const PaymentStatusCompleted = "COMPLETED"

const (
	recurringNotePrefix = "SPONSORSHIP_SUB:"
	oneTimeNotePrefix   = "Sponsorship for user: "
)

var (
	recurringNoteRe = regexp.MustCompile(`SPONSORSHIP_SUB:([^:\s]+):([^:\s]*)`)
	oneTimeNoteRe   = regexp.MustCompile(`Sponsorship for user:\s*(\S+)`)
)

// SponsorshipSubNote encodes the payment note attached to the first charge of
// a recurring sponsorship.
func SponsorshipSubNote(recipientID, donorID string) string {
	return recurringNotePrefix + recipientID + ":" + donorID
}

// OneTimeSponsorshipNote encodes the payment note of a one-time sponsorship.
func OneTimeSponsorshipNote(recipientID string) string {
	return oneTimeNotePrefix + recipientID
}

// ParseSponsorshipNote decodes a payment note. The recurring form takes
// precedence over the one-time form. Notes matching neither return
// PaymentUnknown.
func ParseSponsorshipNote(note string) PaymentClass {
	note = strings.TrimSpace(note)
	if note == "" {
		return PaymentClass{}
	}

	if m := recurringNoteRe.FindStringSubmatch(note); m != nil {
		donor := m[2]
		if donor == "" {
			donor = AnonymousDonor
		}
		return PaymentClass{
			Kind:        PaymentSponsorshipFirstCharge,
			RecipientID: m[1],
			DonorID:     donor,
		}
	}

	if m := oneTimeNoteRe.FindStringSubmatch(note); m != nil {
		return PaymentClass{
			Kind:        PaymentSponsorshipOneTime,
			RecipientID: m[1],
		}
	}

	return PaymentClass{}
}

/*
Package claim provides the shared vocabulary of the claim-resolution engine.

PURPOSE:
  This package contains the types every track engine builds on: monetary
  amounts, outcome enumerations, notice records, claim lines, and the
  per-session domain configuration. It has no behavior beyond pure
  derivations - the track packages (legalbasis, timeext, compensation)
  contain the actual contractual rules.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A monetary amount backed by decimal.Decimal (no float drift)
  - Outcome: Approved/Partial/Rejected plus track-specific Withheld/Waived
  - NoticeRecord: A single act of giving contractual notice
  - ClaimLine: One assessable monetary sub-claim with forfeiture tracking
  - DomainConfig: Immutable facts for one evaluation session

DESIGN PRINCIPLES:
  1. Derived, not stored: a line's assessment is always recomputed from
     claimed vs approved amounts. There is no independent assessment field.
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Purity: Nothing here performs I/O or holds state across calls
  4. Dual outcomes: every track computes a principal outcome (forfeiture
     applied) and a conditional outcome (merits only)

USAGE:
  line := claim.ClaimLine{
      Label:   "main claim",
      Claimed: claim.NewMoney(230000),
      Approved: claim.NewMoney(230000),
  }
  line.Assessment() // OutcomeApproved

SEE ALSO:
  - result.go: Aggregation across claim lines and result cores
  - errors.go: Sentinel errors shared with the adapters
*/
package claim

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Monetary amount with decimal precision
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int64) Money {
	return Money{Value: decimal.NewFromInt(value)}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func ZeroMoney() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money        { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money        { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Neg() Money               { return Money{Value: m.Value.Neg()} }
func (m Money) IsZero() bool             { return m.Value.IsZero() }
func (m Money) IsNegative() bool         { return m.Value.IsNegative() }
func (m Money) IsPositive() bool         { return m.Value.IsPositive() }
func (m Money) Equal(o Money) bool       { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool    { return m.Value.LessThan(o.Value) }

// Ratio returns m/denominator, or zero when the denominator is zero.
func (m Money) Ratio(denominator Money) decimal.Decimal {
	if denominator.IsZero() {
		return decimal.Zero
	}
	return m.Value.Div(denominator.Value)
}

func (m Money) String() string { return m.Value.String() }

func (m Money) MarshalJSON() ([]byte, error)  { return m.Value.MarshalJSON() }
func (m *Money) UnmarshalJSON(b []byte) error { return m.Value.UnmarshalJSON(b) }

// =============================================================================
// OUTCOME - The shared outcome enumeration
// =============================================================================

// Outcome is the result of assessing a claim or claim line.
// OutcomeWithheld applies to the Compensation track only; OutcomeWaived
// applies to the Legal-Basis track only. The zero value OutcomeUnset marks
// "not enough information to evaluate" - callers must keep submission
// disabled while any outcome field is unset.
type Outcome string

const (
	OutcomeUnset    Outcome = ""
	OutcomeApproved Outcome = "approved"
	OutcomePartial  Outcome = "partial"
	OutcomeRejected Outcome = "rejected"
	OutcomeWithheld Outcome = "withheld" // payment deferred pending a cost estimate
	OutcomeWaived   Outcome = "waived"   // instruction withdrawn instead of assessed
)

// DeriveOutcome computes Approved/Partial/Rejected from amounts.
// This is the ONLY code path that produces an assessment; there is no
// stored assessment field anywhere in the engine.
//
// A zero claimed amount derives to Rejected: there is nothing to approve,
// and the aggregate approval ratio is defined as 0 in that case.
func DeriveOutcome(claimed, approved Money) Outcome {
	if claimed.IsZero() {
		return OutcomeRejected
	}
	if approved.Equal(claimed) {
		return OutcomeApproved
	}
	if approved.IsZero() {
		return OutcomeRejected
	}
	return OutcomePartial
}

// DeriveDayOutcome is DeriveOutcome over day counts (Time-Extension track).
func DeriveDayOutcome(claimedDays, approvedDays int) Outcome {
	if claimedDays == 0 {
		return OutcomeRejected
	}
	if approvedDays == claimedDays {
		return OutcomeApproved
	}
	if approvedDays == 0 {
		return OutcomeRejected
	}
	return OutcomePartial
}

// =============================================================================
// TRACKS - The three claim tracks sharing one architecture
// =============================================================================

type Track string

const (
	TrackLegalBasis    Track = "legal_basis"
	TrackTimeExtension Track = "time_extension"
	TrackCompensation  Track = "compensation"
)

// ParseTrack converts a wire-level track name into a Track.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackLegalBasis, TrackTimeExtension, TrackCompensation:
		return Track(s), nil
	}
	return "", ErrUnknownTrack
}

// OutcomesFor returns the outcome vocabulary a track may legally produce.
// Waived exists only on Legal-Basis, Withheld only on Compensation.
func OutcomesFor(t Track) []Outcome {
	switch t {
	case TrackLegalBasis:
		return []Outcome{OutcomeApproved, OutcomePartial, OutcomeRejected, OutcomeWaived}
	case TrackCompensation:
		return []Outcome{OutcomeApproved, OutcomePartial, OutcomeRejected, OutcomeWithheld}
	default:
		return []Outcome{OutcomeApproved, OutcomePartial, OutcomeRejected}
	}
}

// =============================================================================
// TRIGGERING EVENT - Category and mechanism
// =============================================================================

// EventCategory classifies the event that triggered the claim.
type EventCategory string

const (
	CategoryContractChange EventCategory = "contract_change"
	CategoryDefect         EventCategory = "defect"
	CategoryOtherGround    EventCategory = "other_ground"
	CategoryForceMajeure   EventCategory = "force_majeure"
)

// TriggerMechanism distinguishes a client-ordered instruction from a
// claim raised by a party. An instruction can simply be withdrawn, which
// is why Waived is only offered for instruction-triggered events.
type TriggerMechanism string

const (
	MechanismInstruction TriggerMechanism = "instruction"
	MechanismPartyClaim  TriggerMechanism = "party_claim"
)

// =============================================================================
// SETTLEMENT METHOD - How the claimant wants compensation settled
// =============================================================================

type SettlementMethod string

const (
	MethodUnitPrice        SettlementMethod = "unit_price"
	MethodTimeAndMaterials SettlementMethod = "time_and_materials"
	MethodFixedPrice       SettlementMethod = "fixed_price"
)

// =============================================================================
// NOTICE RECORD - A single act of giving contractual notice
// =============================================================================

type NotificationMethod string

const (
	NotifyLetter         NotificationMethod = "letter"
	NotifyEmail          NotificationMethod = "email"
	NotifyMeetingMinutes NotificationMethod = "meeting_minutes"
	NotifyPortal         NotificationMethod = "portal"
)

// NoticeRecord is immutable once created. A track may hold zero, one, or
// two of these (a preliminary notice and a later detailed notice).
type NoticeRecord struct {
	SentOn  time.Time
	Methods []NotificationMethod
}

func (n NoticeRecord) IsZero() bool { return n.SentOn.IsZero() }

// Timely reports whether the notice was sent on or before the deadline.
// A zero deadline means no deadline applied.
func (n NoticeRecord) Timely(deadline time.Time) bool {
	if deadline.IsZero() {
		return true
	}
	return !n.SentOn.After(deadline)
}

// =============================================================================
// CLAIM LINE - One assessable monetary sub-claim
// =============================================================================

// ClaimLine is a computed view of one sub-claim. Only the Compensation
// track has more than one line. Approved holds the principal approval
// (forced to zero when the line is forfeited); ConditionalApproved holds
// the merits approval regardless of forfeiture.
type ClaimLine struct {
	Label                string
	LegalReference       string
	Claimed              Money
	RequiresTimelyNotice bool
	NoticeDate           time.Time
	TimelyNotice         bool
	Forfeited            bool
	Approved             Money
	ConditionalApproved  Money
}

// Assessment derives the principal assessment from amounts. Never stored.
func (l ClaimLine) Assessment() Outcome {
	return DeriveOutcome(l.Claimed, l.Approved)
}

// ConditionalAssessment derives the merits assessment, forfeiture ignored.
func (l ClaimLine) ConditionalAssessment() Outcome {
	return DeriveOutcome(l.Claimed, l.ConditionalApproved)
}

// =============================================================================
// DOMAIN CONFIG - Immutable context for one evaluation session
// =============================================================================

// DomainConfig carries facts already established before the evaluator
// starts: the triggering event, the counterpart's stance upstream, and
// which optional claim lines the claimant raised. Constructed once per
// session by the adapter; never mutated by the engine.
type DomainConfig struct {
	Category     EventCategory
	ForceMajeure bool
	Mechanism    TriggerMechanism

	// InheritedConditional is true when the Legal-Basis track was rejected
	// or itself forfeited for lateness. It is computed once upstream and
	// makes the entire downstream track conditional by inheritance; the
	// track engines never call across to each other.
	InheritedConditional bool

	// ClaimedMethod is the settlement method the claimant proposed
	// (Compensation track only).
	ClaimedMethod SettlementMethod

	// Optional Compensation claim lines raised by the claimant.
	SiteOverheadRaised     bool
	ProductivityLossRaised bool
}

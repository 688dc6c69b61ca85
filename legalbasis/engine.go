/*
Package legalbasis implements the Legal-Basis track engine: does the
triggering event entitle a claim at all.

PURPOSE:
  The smallest of the three track engines. Category checks, a single
  forfeiture rule, the passivity-duration warning, and derivation of the
  outcome options the evaluator may choose from.

KEY RULES:
  - Only "defect" and "other ground" categories carry this track's
    forfeiture check. On a contract change, an untimeliness finding
    belongs to the change-notice rule instead: it leaves this track's
    outcome untouched but still makes every downstream track conditional.
  - Passivity (>10 days since the last notice) is a warning signal, never
    a forfeiture.
  - Waived is offered only when the trigger was a client instruction: an
    order can simply be withdrawn, a party-raised claim cannot.
  - A forfeiture finding forces the principal outcome to Rejected; the
    conditional outcome always evaluates the merits as if the notice had
    been timely.

PURITY:
  Every function is a total mapping from explicit inputs to outputs. The
  current time is an explicit parameter, never read inside. Invalid
  combinations surface via returned flags, never by raising.

SEE ALSO:
  - claim: shared vocabulary
  - advisory: maps the computed outcome to display severity and text
*/
package legalbasis

import (
	"time"

	"github.com/warp/claims-engine/claim"
)

// PassivityThresholdDays is the number of days of silence after the last
// notice before the evaluation is flagged as passive.
const PassivityThresholdDays = 10

// =============================================================================
// FORM STATE - The evaluator's in-progress choices
// =============================================================================

// FormState is owned by the calling adapter and passed by value on every
// call; the engine holds no state between calls.
type FormState struct {
	Outcome           claim.Outcome
	ForfeitureFound   bool   // evaluator found the claimant's notice untimely
	ForfeitureGrounds string // free text supporting the finding
	LastNoticeAt      time.Time
	Justification     string
}

// =============================================================================
// RESULT
// =============================================================================

type Passivity struct {
	IsPassive       bool `json:"is_passive"`
	DaysSinceNotice int  `json:"days_since_notice"`
}

type Result struct {
	claim.ResultCore
	RequiresForfeitureCheck bool `json:"requires_forfeiture_check"`
	Forfeited               bool `json:"forfeited"`

	// ChangeNoticeForfeited carries the change-notice forfeiture of the
	// contract-change category. It never touches this track's outcome;
	// it only cascades downstream.
	ChangeNoticeForfeited bool `json:"change_notice_forfeited"`

	Passivity         Passivity       `json:"passivity"`
	AvailableOutcomes []claim.Outcome `json:"available_outcomes"`
}

// MakesDownstreamConditional reports whether this result makes the
// Time-Extension and Compensation tracks conditional by inheritance.
// The adapter copies it into DomainConfig.InheritedConditional; the track
// engines never call across to each other.
func (r Result) MakesDownstreamConditional() bool {
	return r.Forfeited || r.ChangeNoticeForfeited ||
		r.PrincipalOutcome == claim.OutcomeRejected
}

// =============================================================================
// RULES
// =============================================================================

// CategoryRequiresForfeitureCheck is true only for the defect and
// other-ground categories.
func CategoryRequiresForfeitureCheck(c claim.EventCategory) bool {
	return c == claim.CategoryDefect || c == claim.CategoryOtherGround
}

// EvaluatePassivity flags evaluations where more than the threshold number
// of days passed since the last notice. Advisory only.
func EvaluatePassivity(lastNoticeAt, now time.Time) Passivity {
	if lastNoticeAt.IsZero() || now.Before(lastNoticeAt) {
		return Passivity{}
	}
	days := int(now.Sub(lastNoticeAt).Hours() / 24)
	return Passivity{IsPassive: days > PassivityThresholdDays, DaysSinceNotice: days}
}

// AvailableOutcomes returns the outcome options the evaluator may choose
// from for the given configuration.
func AvailableOutcomes(cfg claim.DomainConfig) []claim.Outcome {
	outcomes := []claim.Outcome{claim.OutcomeApproved, claim.OutcomePartial, claim.OutcomeRejected}
	if cfg.Mechanism == claim.MechanismInstruction {
		outcomes = append(outcomes, claim.OutcomeWaived)
	}
	return outcomes
}

func outcomeAvailable(o claim.Outcome, cfg claim.DomainConfig) bool {
	for _, a := range AvailableOutcomes(cfg) {
		if a == o {
			return true
		}
	}
	return false
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute evaluates the Legal-Basis track. Same inputs always produce the
// same output; now is explicit so the passivity check stays deterministic.
func Compute(state FormState, cfg claim.DomainConfig, now time.Time) Result {
	res := Result{
		RequiresForfeitureCheck: CategoryRequiresForfeitureCheck(cfg.Category),
		Passivity:               EvaluatePassivity(state.LastNoticeAt, now),
		AvailableOutcomes:       AvailableOutcomes(cfg),
	}

	// Forfeiture counts only in categories that carry this track's check.
	// On a contract change the same finding is the change-notice
	// forfeiture: it cascades downstream without rejecting the basis.
	res.Forfeited = res.RequiresForfeitureCheck && state.ForfeitureFound
	res.ChangeNoticeForfeited = cfg.Category == claim.CategoryContractChange && state.ForfeitureFound

	// An unchosen or unavailable outcome leaves the result unset; the
	// caller must keep submission disabled.
	if state.Outcome == claim.OutcomeUnset || !outcomeAvailable(state.Outcome, cfg) {
		return res
	}

	res.ConditionalOutcome = state.Outcome
	res.PrincipalOutcome = state.Outcome
	if res.Forfeited {
		res.PrincipalOutcome = claim.OutcomeRejected
	}

	res.ShowConditionalOutcome = res.Forfeited
	if res.Forfeited {
		res.ConditionalTriggers = []claim.ConditionalTrigger{{Kind: claim.TriggerLineForfeited, Line: "notice"}}
	}
	return res
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Validate reports why the current state cannot be submitted, or nil.
func Validate(state FormState, cfg claim.DomainConfig) error {
	if state.Outcome == claim.OutcomeUnset || !outcomeAvailable(state.Outcome, cfg) {
		return claim.ErrOutcomeNotAvailable
	}

	forfeited := CategoryRequiresForfeitureCheck(cfg.Category) && state.ForfeitureFound
	changeNoticeForfeited := cfg.Category == claim.CategoryContractChange && state.ForfeitureFound

	// Justification is optional only for a clean approval.
	if state.Outcome != claim.OutcomeApproved || forfeited || changeNoticeForfeited {
		if len(state.Justification) < claim.MinJustificationLength {
			return claim.ErrJustificationTooShort
		}
	}
	return nil
}

// CanSubmit is the pure submission gate used by the adapter.
func CanSubmit(state FormState, cfg claim.DomainConfig) bool {
	return Validate(state, cfg) == nil
}

// =============================================================================
// EVENT PAYLOAD
// =============================================================================

// EventPayload is the record the adapter persists for a Legal-Basis
// response. The conditional outcome is carried only when it is shown.
type EventPayload struct {
	Track                 claim.Track                `json:"track"`
	Category              claim.EventCategory        `json:"category"`
	Mechanism             claim.TriggerMechanism     `json:"mechanism"`
	PrincipalOutcome      claim.Outcome              `json:"principal_outcome"`
	ConditionalOutcome    claim.Outcome              `json:"conditional_outcome,omitempty"`
	ConditionalTriggers   []claim.ConditionalTrigger `json:"conditional_triggers,omitempty"`
	ForfeitureFound       bool                       `json:"forfeiture_found"`
	ChangeNoticeForfeited bool                       `json:"change_notice_forfeited,omitempty"`
	ForfeitureGrounds     string                     `json:"forfeiture_grounds,omitempty"`
	Passive               bool                       `json:"passive"`
	DaysSinceNotice       int                        `json:"days_since_notice"`
	Justification         string                     `json:"justification"`
}

// BuildEventData maps the chosen outcome plus forfeiture and justification
// fields into the external event payload.
func BuildEventData(state FormState, cfg claim.DomainConfig, res Result) EventPayload {
	p := EventPayload{
		Track:                 claim.TrackLegalBasis,
		Category:              cfg.Category,
		Mechanism:             cfg.Mechanism,
		PrincipalOutcome:      res.PrincipalOutcome,
		ConditionalTriggers:   res.ConditionalTriggers,
		ForfeitureFound:       res.Forfeited,
		ChangeNoticeForfeited: res.ChangeNoticeForfeited,
		ForfeitureGrounds:     state.ForfeitureGrounds,
		Passive:               res.Passivity.IsPassive,
		DaysSinceNotice:       res.Passivity.DaysSinceNotice,
		Justification:         state.Justification,
	}
	if res.ShowConditionalOutcome {
		p.ConditionalOutcome = res.ConditionalOutcome
	}
	return p
}

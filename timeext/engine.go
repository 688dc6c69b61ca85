/*
Package timeext implements the Time-Extension track engine: days of
schedule relief.

PURPOSE:
  Visibility rules driven by the notice type, two independent forfeiture
  checks, and the principal/conditional outcome pair derived from a single
  claimed-vs-approved day count.

EVALUATION SHAPE:
  Draft -> {AwaitingQuantification | Quantified} -> Resolved

  A preliminary ("neutral") notice may exist without a day count;
  quantification adds it later, possibly after the counterpart issued a
  formal request for quantification, which imposes its own deadline. A
  "deferred quantification" response is used when the scope genuinely
  cannot yet be estimated.

  The phases are derived from the form state on every call - there is no
  mutable state machine inside the engine. Resolved is reached only by
  submission, which the adapter owns.

FORFEITURE:
  Two independent checks: (a) the notice itself was untimely, (b) the
  quantification was untimely once the basis for computing days became
  known, or untimely against the counterpart's formal request deadline.
  Either forfeits the principal outcome to Rejected; neither touches the
  conditional outcome, which always evaluates the merits.

INPUT ASSUMPTIONS:
  Day counts are non-negative integers; the adapter's input validation
  rejects malformed counts before they reach the engine.

SEE ALSO:
  - claim: shared vocabulary
  - legalbasis: upstream track whose rejection makes this one conditional
*/
package timeext

import (
	"time"

	"github.com/warp/claims-engine/claim"
)

// =============================================================================
// NOTICE TYPE AND PHASE
// =============================================================================

// NoticeType drives which form sections are visible.
type NoticeType string

const (
	NoticeUnset NoticeType = ""

	// NoticeNeutral: a preliminary notice without a day count.
	NoticeNeutral NoticeType = "neutral"

	// NoticeQuantified: the claim carries a concrete day count.
	NoticeQuantified NoticeType = "quantified"

	// NoticeDeferred: quantification is deferred because the scope cannot
	// yet be estimated.
	NoticeDeferred NoticeType = "deferred_quantification"
)

type Phase string

const (
	PhaseDraft                  Phase = "draft"
	PhaseAwaitingQuantification Phase = "awaiting_quantification"
	PhaseQuantified             Phase = "quantified"
	PhaseResolved               Phase = "resolved"
)

// DerivePhase computes the evaluation phase from the form state. The
// submitted flag is owned by the adapter; the engine never records it.
func DerivePhase(state FormState, submitted bool) Phase {
	if submitted {
		return PhaseResolved
	}
	switch state.NoticeType {
	case NoticeQuantified:
		return PhaseQuantified
	case NoticeNeutral, NoticeDeferred:
		return PhaseAwaitingQuantification
	default:
		return PhaseDraft
	}
}

// =============================================================================
// CONFIG AND FORM STATE
// =============================================================================

// Config extends the shared domain config with the counterpart's formal
// request for quantification, if one was issued.
type Config struct {
	claim.DomainConfig

	QuantificationRequested bool
	QuantificationDeadline  time.Time
}

// FormState holds the evaluator's in-progress choices, passed by value on
// every call.
type FormState struct {
	NoticeType NoticeType

	Notice       claim.NoticeRecord
	NoticeTimely bool // evaluator finding on the notice itself

	QuantifiedOn         time.Time
	QuantificationTimely bool // evaluator finding on the quantification

	ClaimedDays       int
	ApprovedDays      int
	NewCompletionDate time.Time

	Justification string
}

// =============================================================================
// VISIBILITY
// =============================================================================

// Visibility lists which form sections are shown for a notice type: a
// neutral notice shows only notice fields, a quantified claim shows notice
// and day-count fields, a deferred-quantification response shows neither.
type Visibility struct {
	NoticeFields   bool `json:"notice_fields"`
	DayCountFields bool `json:"day_count_fields"`
}

func ComputeVisibility(nt NoticeType) Visibility {
	switch nt {
	case NoticeNeutral:
		return Visibility{NoticeFields: true}
	case NoticeQuantified:
		return Visibility{NoticeFields: true, DayCountFields: true}
	default:
		return Visibility{}
	}
}

// =============================================================================
// FORFEITURE
// =============================================================================

// Forfeiture carries the two independent timeliness checks.
type Forfeiture struct {
	NoticeUntimely         bool `json:"notice_untimely"`
	QuantificationUntimely bool `json:"quantification_untimely"`
}

func (f Forfeiture) Any() bool {
	return f.NoticeUntimely || f.QuantificationUntimely
}

// ComputeForfeiture applies both checks. The quantification check only
// exists once a day count was quantified; the deadline from a formal
// request for quantification forfeits on its own even when the evaluator
// found the quantification otherwise timely.
func ComputeForfeiture(state FormState, cfg Config) Forfeiture {
	var f Forfeiture

	vis := ComputeVisibility(state.NoticeType)
	if vis.NoticeFields && !state.Notice.IsZero() {
		f.NoticeUntimely = !state.NoticeTimely
	}

	if state.NoticeType == NoticeQuantified {
		f.QuantificationUntimely = !state.QuantificationTimely
		if cfg.QuantificationRequested && !state.QuantifiedOn.IsZero() &&
			!cfg.QuantificationDeadline.IsZero() &&
			state.QuantifiedOn.After(cfg.QuantificationDeadline) {
			f.QuantificationUntimely = true
		}
	}
	return f
}

// =============================================================================
// RESULT AND COMPUTE
// =============================================================================

type Result struct {
	claim.ResultCore
	Phase      Phase      `json:"phase"`
	Visibility Visibility `json:"visibility"`
	Forfeiture Forfeiture `json:"forfeiture"`

	// EscalationAdvised flags that the claimant may be entitled to invoke
	// an expedited-work remedy because the claimed days were rejected or
	// materially reduced. Advisory only, never a state transition.
	EscalationAdvised bool `json:"escalation_advised"`
}

// Compute evaluates the Time-Extension track. A neutral or deferred
// response carries no day count, so its outcomes stay unset; only a
// quantified claim is assessed.
func Compute(state FormState, cfg Config) Result {
	res := Result{
		Phase:      DerivePhase(state, false),
		Visibility: ComputeVisibility(state.NoticeType),
		Forfeiture: ComputeForfeiture(state, cfg),
	}

	if state.NoticeType != NoticeQuantified {
		return res
	}

	res.ConditionalOutcome = claim.DeriveDayOutcome(state.ClaimedDays, state.ApprovedDays)
	res.PrincipalOutcome = res.ConditionalOutcome
	forfeited := res.Forfeiture.Any() || cfg.InheritedConditional
	if forfeited {
		res.PrincipalOutcome = claim.OutcomeRejected
	}

	res.ShowConditionalOutcome = forfeited
	if cfg.InheritedConditional {
		res.ConditionalTriggers = append(res.ConditionalTriggers,
			claim.ConditionalTrigger{Kind: claim.TriggerInheritedConditional})
	}
	if res.Forfeiture.NoticeUntimely {
		res.ConditionalTriggers = append(res.ConditionalTriggers,
			claim.ConditionalTrigger{Kind: claim.TriggerLineForfeited, Line: "notice"})
	}
	if res.Forfeiture.QuantificationUntimely {
		res.ConditionalTriggers = append(res.ConditionalTriggers,
			claim.ConditionalTrigger{Kind: claim.TriggerLineForfeited, Line: "quantification"})
	}

	res.EscalationAdvised = escalationAdvised(state, res.PrincipalOutcome)
	return res
}

// escalationAdvised is true when the claim was rejected outright or the
// approved days fall below half of the claimed days.
func escalationAdvised(state FormState, principal claim.Outcome) bool {
	if principal == claim.OutcomeRejected {
		return true
	}
	return state.ClaimedDays > 0 && state.ApprovedDays*2 < state.ClaimedDays
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Validate reports why the current state cannot be submitted, or nil.
// Required fields follow the visible sections; justification is optional
// for a bare preliminary notice only.
func Validate(state FormState, cfg Config) error {
	switch state.NoticeType {
	case NoticeNeutral:
		if state.Notice.IsZero() || len(state.Notice.Methods) == 0 {
			return claim.ErrIncompleteForm
		}
		return nil

	case NoticeDeferred:
		if len(state.Justification) < claim.MinJustificationLength {
			return claim.ErrJustificationTooShort
		}
		return nil

	case NoticeQuantified:
		if state.Notice.IsZero() || state.ClaimedDays <= 0 || state.NewCompletionDate.IsZero() {
			return claim.ErrIncompleteForm
		}
		if state.ApprovedDays < 0 {
			return claim.ErrIncompleteForm
		}
		if state.ApprovedDays > state.ClaimedDays {
			return claim.ErrApprovedExceedsClaimed
		}
		res := Compute(state, cfg)
		if res.PrincipalOutcome != claim.OutcomeApproved || res.ShowConditionalOutcome {
			if len(state.Justification) < claim.MinJustificationLength {
				return claim.ErrJustificationTooShort
			}
		}
		return nil

	default:
		return claim.ErrIncompleteForm
	}
}

// CanSubmit is the pure submission gate used by the adapter.
func CanSubmit(state FormState, cfg Config) bool {
	return Validate(state, cfg) == nil
}

// =============================================================================
// EVENT PAYLOAD
// =============================================================================

// EventPayload is the record the adapter persists for a Time-Extension
// response.
type EventPayload struct {
	Track               claim.Track                `json:"track"`
	Category            claim.EventCategory        `json:"category"`
	NoticeType          NoticeType                 `json:"notice_type"`
	NoticeSentOn        time.Time                  `json:"notice_sent_on,omitempty"`
	NoticeMethods       []claim.NotificationMethod `json:"notice_methods,omitempty"`
	PrincipalOutcome    claim.Outcome              `json:"principal_outcome,omitempty"`
	ConditionalOutcome  claim.Outcome              `json:"conditional_outcome,omitempty"`
	ConditionalTriggers []claim.ConditionalTrigger `json:"conditional_triggers,omitempty"`
	Forfeiture          Forfeiture                 `json:"forfeiture"`
	ClaimedDays         int                        `json:"claimed_days,omitempty"`
	ApprovedDays        int                        `json:"approved_days,omitempty"`
	NewCompletionDate   time.Time                  `json:"new_completion_date,omitempty"`
	EscalationAdvised   bool                       `json:"escalation_advised"`
	Justification       string                     `json:"justification,omitempty"`
}

// BuildEventData maps the form state and computed result into the external
// event payload.
func BuildEventData(state FormState, cfg Config, res Result) EventPayload {
	p := EventPayload{
		Track:               claim.TrackTimeExtension,
		Category:            cfg.Category,
		NoticeType:          state.NoticeType,
		NoticeSentOn:        state.Notice.SentOn,
		NoticeMethods:       state.Notice.Methods,
		PrincipalOutcome:    res.PrincipalOutcome,
		ConditionalTriggers: res.ConditionalTriggers,
		Forfeiture:          res.Forfeiture,
		ClaimedDays:         state.ClaimedDays,
		ApprovedDays:        state.ApprovedDays,
		NewCompletionDate:   state.NewCompletionDate,
		EscalationAdvised:   res.EscalationAdvised,
		Justification:       state.Justification,
	}
	if res.ShowConditionalOutcome {
		p.ConditionalOutcome = res.ConditionalOutcome
	}
	return p
}

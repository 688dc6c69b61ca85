/*
Package compensation implements the Compensation track engine: monetary
relief across up to three concurrent claim lines.

PURPOSE:
  The largest of the three track engines. Per-line forfeiture, the
  settlement-method dispute, the revised-rates and withholding sub-paths,
  and the aggregation of all lines into four totals and a combined
  principal/conditional outcome pair.

CLAIM LINES:
  - main claim: always present
  - site overhead: present only if the claimant raised it
  - productivity loss: present only if the claimant raised it
  Each line tracks notice timeliness and forfeiture independently; one
  line's forfeiture never touches another line.

FORFEITURE CASCADE:
  A line is principal-forfeited when its own notice was untimely OR when
  the whole track is conditional because the Legal-Basis track was
  rejected or itself forfeited. Conditional evaluation always proceeds as
  if no forfeiture had occurred.

NO ASSESSMENT SELECTOR:
  The evaluator enters only an approved amount per line. Approved, Partial
  or Rejected is always derived from approved vs claimed (claim package),
  so a selector can never contradict the amounts.

FAILURE SEMANTICS:
  An evaluation without a main line yields an all-unset result; the
  engine never raises. An approved amount above the claimed amount is a
  validation error surfaced by Validate, never silently clamped.

SEE ALSO:
  - claim/result.go: AggregateLines and the shared outcome derivation
  - advisory: display mapping of the computed outcome
*/
package compensation

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/claims-engine/claim"
)

// Line labels used in results, triggers, and event payloads.
const (
	LineMain             = "main claim"
	LineSiteOverhead     = "site overhead"
	LineProductivityLoss = "productivity loss"
)

// =============================================================================
// FORM STATE
// =============================================================================

// LineInput is the evaluator's in-progress assessment of one claim line.
// Approved is the merits approval; the engine derives the principal
// approval (zero when forfeited) from it.
type LineInput struct {
	LegalReference       string
	Claimed              claim.Money
	RequiresTimelyNotice bool
	NoticeDate           time.Time
	NoticeTimely         bool
	Approved             claim.Money
}

// SubEvaluation is the two-state sub-path evaluation shared by the
// revised-rates and withholding gates: first the sub-path's own notice
// timeliness, then accept/reject.
type SubEvaluation struct {
	Active       bool
	NoticeTimely bool
	Accepted     bool
}

// FormState holds the evaluator's choices, passed by value on every call.
// Nil line pointers mean the line was not raised (or not filled in yet).
type FormState struct {
	Main             *LineInput
	SiteOverhead     *LineInput
	ProductivityLoss *LineInput

	// MethodAccepted: the evaluator accepts the claimant's settlement
	// method. When false, CounterMethod carries the proposed alternative.
	MethodAccepted bool
	CounterMethod  claim.SettlementMethod

	// RevisedRates: the unit-price-adjustment-requiring-revised-rates
	// sub-path. Withholding: payment withheld pending a cost estimate.
	RevisedRates SubEvaluation
	Withholding  SubEvaluation

	Justification string
}

// =============================================================================
// RESULT
// =============================================================================

// SubOutcome is the computed state of a gated sub-path.
type SubOutcome struct {
	Active    bool `json:"active"`
	Forfeited bool `json:"forfeited"`
	Accepted  bool `json:"accepted"`
}

// Applies reports whether the sub-path survived its own evaluation.
func (s SubOutcome) Applies() bool {
	return s.Active && !s.Forfeited && s.Accepted
}

type Result struct {
	claim.ResultCore

	Lines         []claim.ClaimLine `json:"lines"`
	Totals        claim.Totals      `json:"totals"`
	ApprovalRatio decimal.Decimal   `json:"approval_ratio"`

	MethodDisputed  bool                   `json:"method_disputed"`
	EffectiveMethod claim.SettlementMethod `json:"effective_method"`
	RevisedRates    SubOutcome             `json:"revised_rates"`
	Withholding     SubOutcome             `json:"withholding"`
}

// =============================================================================
// COMPUTE
// =============================================================================

// Compute evaluates the Compensation track. An evaluation with no main
// line yields the all-unset result even when optional lines are filled
// in; callers keep submission disabled.
func Compute(state FormState, cfg claim.DomainConfig) Result {
	if state.Main == nil {
		return Result{ApprovalRatio: decimal.Zero}
	}
	lines := assembleLines(state, cfg)

	res := Result{
		Lines:           lines,
		Totals:          claim.AggregateLines(lines),
		MethodDisputed:  methodDisputed(state, cfg),
		EffectiveMethod: effectiveMethod(state, cfg),
		RevisedRates:    subOutcome(state.RevisedRates),
		Withholding:     subOutcome(state.Withholding),
	}
	res.ApprovalRatio = res.Totals.ApprovalRatio()

	res.ConditionalOutcome = claim.AggregateOutcome(lines, true)
	if res.Withholding.Applies() {
		res.PrincipalOutcome = claim.OutcomeWithheld
	} else {
		res.PrincipalOutcome = claim.AggregateOutcome(lines, false)
	}

	res.ShowConditionalOutcome, res.ConditionalTriggers =
		claim.ConditionalVisibility(lines, cfg.InheritedConditional)
	return res
}

// assembleLines builds the computed claim lines. Optional lines join only
// when the claimant raised them; the main line is always first.
func assembleLines(state FormState, cfg claim.DomainConfig) []claim.ClaimLine {
	var lines []claim.ClaimLine
	if state.Main != nil {
		lines = append(lines, computeLine(LineMain, *state.Main, cfg))
	}
	if cfg.SiteOverheadRaised && state.SiteOverhead != nil {
		lines = append(lines, computeLine(LineSiteOverhead, *state.SiteOverhead, cfg))
	}
	if cfg.ProductivityLossRaised && state.ProductivityLoss != nil {
		lines = append(lines, computeLine(LineProductivityLoss, *state.ProductivityLoss, cfg))
	}
	return lines
}

// computeLine applies the forfeiture cascade to a single line. The merits
// approval is kept as the conditional approval regardless of forfeiture.
func computeLine(label string, in LineInput, cfg claim.DomainConfig) claim.ClaimLine {
	forfeited := (in.RequiresTimelyNotice && !in.NoticeTimely) || cfg.InheritedConditional

	approved := in.Approved
	if forfeited {
		approved = claim.ZeroMoney()
	}
	return claim.ClaimLine{
		Label:                label,
		LegalReference:       in.LegalReference,
		Claimed:              in.Claimed,
		RequiresTimelyNotice: in.RequiresTimelyNotice,
		NoticeDate:           in.NoticeDate,
		TimelyNotice:         in.NoticeTimely,
		Forfeited:            forfeited,
		Approved:             approved,
		ConditionalApproved:  in.Approved,
	}
}

func subOutcome(s SubEvaluation) SubOutcome {
	return SubOutcome{
		Active:    s.Active,
		Forfeited: s.Active && !s.NoticeTimely,
		Accepted:  s.Active && s.Accepted,
	}
}

func methodDisputed(state FormState, cfg claim.DomainConfig) bool {
	return !state.MethodAccepted &&
		state.CounterMethod != "" &&
		state.CounterMethod != cfg.ClaimedMethod
}

func effectiveMethod(state FormState, cfg claim.DomainConfig) claim.SettlementMethod {
	if !state.MethodAccepted && state.CounterMethod != "" {
		return state.CounterMethod
	}
	return cfg.ClaimedMethod
}

// =============================================================================
// SUBMISSION
// =============================================================================

// Validate reports why the current state cannot be submitted, or nil.
func Validate(state FormState, cfg claim.DomainConfig) error {
	if state.Main == nil {
		return claim.ErrNoClaimLines
	}
	if cfg.SiteOverheadRaised && state.SiteOverhead == nil {
		return claim.ErrIncompleteForm
	}
	if cfg.ProductivityLossRaised && state.ProductivityLoss == nil {
		return claim.ErrIncompleteForm
	}

	inputs := []struct {
		label string
		in    *LineInput
	}{
		{LineMain, state.Main},
		{LineSiteOverhead, state.SiteOverhead},
		{LineProductivityLoss, state.ProductivityLoss},
	}
	for _, l := range inputs {
		if l.in == nil {
			continue
		}
		if err := validateLine(l.label, *l.in); err != nil {
			return err
		}
	}

	if !state.MethodAccepted && state.CounterMethod == "" {
		return claim.ErrIncompleteForm
	}

	res := Compute(state, cfg)
	if res.IsUnset() {
		return claim.ErrNoClaimLines
	}
	if justificationRequired(res) && len(state.Justification) < claim.MinJustificationLength {
		return claim.ErrJustificationTooShort
	}
	return nil
}

func validateLine(label string, in LineInput) error {
	if in.Claimed.IsNegative() || in.Approved.IsNegative() {
		return claim.ErrIncompleteForm
	}
	if in.RequiresTimelyNotice && in.NoticeDate.IsZero() {
		return claim.ErrIncompleteForm
	}
	if in.Approved.GreaterThan(in.Claimed) {
		return &claim.ExcessApprovalError{Line: label, Claimed: in.Claimed, Approved: in.Approved}
	}
	return nil
}

// justificationRequired: any line at a non-trivial outcome, any
// forfeiture, a method dispute, or an active sub-path.
func justificationRequired(res Result) bool {
	if res.PrincipalOutcome != claim.OutcomeApproved || res.ShowConditionalOutcome {
		return true
	}
	return res.MethodDisputed || res.RevisedRates.Active || res.Withholding.Active
}

// CanSubmit is the pure submission gate used by the adapter.
func CanSubmit(state FormState, cfg claim.DomainConfig) bool {
	return Validate(state, cfg) == nil
}

// =============================================================================
// EVENT PAYLOAD
// =============================================================================

// LineBreakdown is the per-line section of the persisted payload.
type LineBreakdown struct {
	Label               string        `json:"label"`
	LegalReference      string        `json:"legal_reference,omitempty"`
	Claimed             claim.Money   `json:"claimed"`
	NoticeDate          time.Time     `json:"notice_date,omitempty"`
	TimelyNotice        bool          `json:"timely_notice"`
	Forfeited           bool          `json:"forfeited"`
	Approved            claim.Money   `json:"approved"`
	ConditionalApproved claim.Money   `json:"conditional_approved"`
	Assessment          claim.Outcome `json:"assessment"`
}

// EventPayload is the record the adapter persists for a Compensation
// response, carrying the full per-line breakdown.
type EventPayload struct {
	Track               claim.Track                `json:"track"`
	Category            claim.EventCategory        `json:"category"`
	ClaimedMethod       claim.SettlementMethod     `json:"claimed_method"`
	EffectiveMethod     claim.SettlementMethod     `json:"effective_method"`
	MethodDisputed      bool                       `json:"method_disputed"`
	PrincipalOutcome    claim.Outcome              `json:"principal_outcome"`
	ConditionalOutcome  claim.Outcome              `json:"conditional_outcome,omitempty"`
	ConditionalTriggers []claim.ConditionalTrigger `json:"conditional_triggers,omitempty"`
	Lines               []LineBreakdown            `json:"lines"`
	TotalClaimed        claim.Money                `json:"total_claimed"`
	TotalApproved       claim.Money                `json:"total_approved"`
	TotalConditional    claim.Money                `json:"total_conditional"`
	ApprovalRatio       decimal.Decimal            `json:"approval_ratio"`
	Withheld            bool                       `json:"withheld"`
	Justification       string                     `json:"justification"`
}

// BuildEventData maps the form state and computed result into the external
// event payload.
func BuildEventData(state FormState, cfg claim.DomainConfig, res Result) EventPayload {
	p := EventPayload{
		Track:               claim.TrackCompensation,
		Category:            cfg.Category,
		ClaimedMethod:       cfg.ClaimedMethod,
		EffectiveMethod:     res.EffectiveMethod,
		MethodDisputed:      res.MethodDisputed,
		PrincipalOutcome:    res.PrincipalOutcome,
		ConditionalTriggers: res.ConditionalTriggers,
		TotalClaimed:        res.Totals.ClaimedIncludingForfeited,
		TotalApproved:       res.Totals.ApprovedPrincipal,
		TotalConditional:    res.Totals.ApprovedIncludingConditional,
		ApprovalRatio:       res.ApprovalRatio,
		Withheld:            res.Withholding.Applies(),
		Justification:       state.Justification,
	}
	if res.ShowConditionalOutcome {
		p.ConditionalOutcome = res.ConditionalOutcome
	}
	for _, l := range res.Lines {
		p.Lines = append(p.Lines, LineBreakdown{
			Label:               l.Label,
			LegalReference:      l.LegalReference,
			Claimed:             l.Claimed,
			NoticeDate:          l.NoticeDate,
			TimelyNotice:        l.TimelyNotice,
			Forfeited:           l.Forfeited,
			Approved:            l.Approved,
			ConditionalApproved: l.ConditionalApproved,
			Assessment:          l.Assessment(),
		})
	}
	return p
}

/*
result.go - Computed result cores and claim-line aggregation

PURPOSE:
  The pieces of a ComputedResult that all three tracks share: the
  principal/conditional outcome pair, the conditional-outcome visibility
  rule, and the aggregation of claim lines into the four totals.

THE DUAL OUTCOME PAIR:
  Every track computes two outcomes from the same inputs:
  - Principal: forfeiture rules applied as found
  - Conditional (subsidiary): merits only, as if every notice was timely
  Both run through one shared derivation parameterized by a single
  "ignore forfeiture" boolean. The logic is never duplicated.

VISIBILITY RULE:
  The conditional outcome is shown iff at least one line is forfeited or
  the whole track inherits conditional status from the Legal-Basis track.
  ConditionalTriggers records which of those reasons applied.

SEE ALSO:
  - types.go: ClaimLine and Outcome definitions
  - compensation/engine.go: the heaviest user of AggregateLines
*/
package claim

import "github.com/shopspring/decimal"

// =============================================================================
// CONDITIONAL TRIGGERS - Why a conditional outcome is shown
// =============================================================================

type TriggerKind string

const (
	// TriggerLineForfeited: a line's own notice was untimely.
	TriggerLineForfeited TriggerKind = "line_forfeited"

	// TriggerInheritedConditional: the Legal-Basis track was rejected or
	// forfeited, making every downstream evaluation conditional.
	TriggerInheritedConditional TriggerKind = "legal_basis_conditional"
)

// ConditionalTrigger justifies showing the conditional outcome.
// Line carries the forfeited line's label; empty for inherited triggers.
type ConditionalTrigger struct {
	Kind TriggerKind `json:"kind"`
	Line string      `json:"line,omitempty"`
}

// =============================================================================
// RESULT CORE - Embedded by every track's computed result
// =============================================================================

// ResultCore is purely derived, never persisted, and recomputed on every
// input change. An all-unset core signals an input-shape error: callers
// must keep submission disabled (the engine never raises).
type ResultCore struct {
	PrincipalOutcome       Outcome              `json:"principal_outcome"`
	ConditionalOutcome     Outcome              `json:"conditional_outcome"`
	ShowConditionalOutcome bool                 `json:"show_conditional_outcome"`
	ConditionalTriggers    []ConditionalTrigger `json:"conditional_triggers,omitempty"`
}

// IsUnset reports whether the core carries no evaluation at all.
func (c ResultCore) IsUnset() bool {
	return c.PrincipalOutcome == OutcomeUnset && c.ConditionalOutcome == OutcomeUnset
}

// =============================================================================
// TOTALS - Aggregation across claim lines
// =============================================================================

// Totals holds the four aggregate amounts over a set of claim lines.
type Totals struct {
	// Claimed sums the claimed amounts of non-forfeited lines only.
	Claimed Money

	// ClaimedIncludingForfeited sums every line regardless of forfeiture.
	// This is the denominator of the approval ratio.
	ClaimedIncludingForfeited Money

	// ApprovedPrincipal sums principal approvals (0 for forfeited lines).
	ApprovedPrincipal Money

	// ApprovedIncludingConditional sums merits approvals, forfeiture ignored.
	ApprovedIncludingConditional Money
}

// ApprovalRatio is ApprovedPrincipal / ClaimedIncludingForfeited,
// 0 when nothing was claimed.
func (t Totals) ApprovalRatio() decimal.Decimal {
	return t.ApprovedPrincipal.Ratio(t.ClaimedIncludingForfeited)
}

// AggregateLines folds claim lines into Totals. Forfeiting one line never
// changes another line's contribution.
func AggregateLines(lines []ClaimLine) Totals {
	t := Totals{
		Claimed:                      ZeroMoney(),
		ClaimedIncludingForfeited:    ZeroMoney(),
		ApprovedPrincipal:            ZeroMoney(),
		ApprovedIncludingConditional: ZeroMoney(),
	}
	for _, l := range lines {
		t.ClaimedIncludingForfeited = t.ClaimedIncludingForfeited.Add(l.Claimed)
		t.ApprovedIncludingConditional = t.ApprovedIncludingConditional.Add(l.ConditionalApproved)
		if l.Forfeited {
			continue
		}
		t.Claimed = t.Claimed.Add(l.Claimed)
		t.ApprovedPrincipal = t.ApprovedPrincipal.Add(l.Approved)
	}
	return t
}

// AggregateOutcome derives the aggregate outcome over a set of lines.
// The principal and conditional outcomes are the same derivation with the
// ignoreForfeiture switch flipped; nothing else differs.
func AggregateOutcome(lines []ClaimLine, ignoreForfeiture bool) Outcome {
	t := AggregateLines(lines)
	approved := t.ApprovedPrincipal
	if ignoreForfeiture {
		approved = t.ApprovedIncludingConditional
	}
	return DeriveOutcome(t.ClaimedIncludingForfeited, approved)
}

// ConditionalVisibility applies the shared visibility rule and collects
// the triggers that justify it. A line trigger is recorded only for the
// line's own untimely notice; inheritance is recorded once for the track,
// not repeated per line it cascades into.
func ConditionalVisibility(lines []ClaimLine, inheritedConditional bool) (bool, []ConditionalTrigger) {
	var triggers []ConditionalTrigger
	if inheritedConditional {
		triggers = append(triggers, ConditionalTrigger{Kind: TriggerInheritedConditional})
	}
	show := inheritedConditional
	for _, l := range lines {
		if l.Forfeited {
			show = true
		}
		if l.RequiresTimelyNotice && !l.TimelyNotice {
			triggers = append(triggers, ConditionalTrigger{Kind: TriggerLineForfeited, Line: l.Label})
		}
	}
	return show, triggers
}

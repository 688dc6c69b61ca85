/*
Package advisory maps computed outcomes to display consequences.

PURPOSE:
  One pure function per evaluation: (track, outcome, context) -> severity
  plus templated explanation text. The mapping is a lookup table keyed by
  (outcome, conditional-track, force-majeure) with a generic fallback, so
  the rendering layer never interprets outcomes itself.

  Advice is purely presentational data. It never feeds back into the
  computed result.

SEE ALSO:
  - claim: the Outcome vocabulary
  - api/handlers.go: attaches advice to compute responses
*/
package advisory

import "github.com/warp/claims-engine/claim"

// =============================================================================
// SEVERITY AND ADVICE
// =============================================================================

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityInfo    Severity = "info"
)

type Advice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Context carries the facts the mapping keys on besides the outcome.
type Context struct {
	Conditional  bool // the track only shows a conditional outcome
	ForceMajeure bool
}

// =============================================================================
// LOOKUP TABLES
// =============================================================================

type adviceKey struct {
	Outcome      claim.Outcome
	Conditional  bool
	ForceMajeure bool
}

var legalBasisTable = map[adviceKey]Advice{
	{claim.OutcomeApproved, false, false}: {SeveritySuccess, "The triggering event entitles the claimant to pursue the claim."},
	{claim.OutcomeApproved, false, true}:  {SeveritySuccess, "Force majeure acknowledged; the claimant may pursue schedule relief but not compensation."},
	{claim.OutcomeRejected, false, false}: {SeverityDanger, "No contractual basis for the claim was found."},
	{claim.OutcomeRejected, true, false}:  {SeverityWarning, "The basis is forfeited for lateness; the merits are assessed conditionally only."},
	{claim.OutcomeWaived, false, false}:   {SeverityInfo, "The instruction is withdrawn; no further assessment follows."},
}

var timeExtensionTable = map[adviceKey]Advice{
	{claim.OutcomeApproved, false, false}: {SeveritySuccess, "The claimed schedule relief is granted in full."},
	{claim.OutcomeApproved, false, true}:  {SeveritySuccess, "Schedule relief granted in full on force majeure grounds."},
	{claim.OutcomePartial, false, false}:  {SeverityWarning, "Schedule relief is granted in part; the claimant may be entitled to invoke expedited work."},
	{claim.OutcomeRejected, false, false}: {SeverityDanger, "No schedule relief is granted; the claimant may be entitled to invoke expedited work."},
	{claim.OutcomeRejected, true, false}:  {SeverityWarning, "The extension claim is forfeited for lateness; days are assessed conditionally only."},
}

var compensationTable = map[adviceKey]Advice{
	{claim.OutcomeApproved, false, false}: {SeveritySuccess, "The claimed compensation is approved in full."},
	{claim.OutcomePartial, false, false}:  {SeverityWarning, "The claimed compensation is approved in part; see the per-line breakdown."},
	{claim.OutcomeRejected, false, false}: {SeverityDanger, "The claimed compensation is rejected on the merits."},
	{claim.OutcomeRejected, true, false}:  {SeverityWarning, "The compensation claim is forfeited for lateness; amounts are assessed conditionally only."},
	{claim.OutcomeRejected, false, true}:  {SeverityInfo, "Force majeure relieves the respondent of compensation; only schedule relief remains available."},
	{claim.OutcomeWithheld, false, false}: {SeverityInfo, "Payment is withheld pending the required cost estimate."},
}

// =============================================================================
// MAPPER
// =============================================================================

// Advise maps a computed outcome to its display consequence. Unmatched
// combinations fall back to a generic message derived from the outcome
// alone, so every outcome always renders something.
func Advise(track claim.Track, outcome claim.Outcome, ctx Context) Advice {
	table := map[adviceKey]Advice{}
	switch track {
	case claim.TrackLegalBasis:
		table = legalBasisTable
	case claim.TrackTimeExtension:
		table = timeExtensionTable
	case claim.TrackCompensation:
		table = compensationTable
	}

	if a, ok := table[adviceKey{outcome, ctx.Conditional, ctx.ForceMajeure}]; ok {
		return a
	}
	// Retry without the force-majeure dimension before the generic fallback.
	if a, ok := table[adviceKey{outcome, ctx.Conditional, false}]; ok {
		return a
	}
	return fallback(outcome)
}

func fallback(outcome claim.Outcome) Advice {
	switch outcome {
	case claim.OutcomeApproved:
		return Advice{SeveritySuccess, "The claim is approved."}
	case claim.OutcomePartial:
		return Advice{SeverityWarning, "The claim is approved in part."}
	case claim.OutcomeRejected:
		return Advice{SeverityDanger, "The claim is rejected."}
	case claim.OutcomeWithheld:
		return Advice{SeverityInfo, "The decision is withheld pending a cost estimate."}
	case claim.OutcomeWaived:
		return Advice{SeverityInfo, "The instruction is withdrawn."}
	default:
		return Advice{SeverityInfo, "Not enough information to evaluate yet."}
	}
}

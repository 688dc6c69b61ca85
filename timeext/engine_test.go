/*
engine_test.go - Time-Extension track tests

ORGANIZATION:
  1. Visibility - which sections each notice type shows
  2. Forfeiture - the two independent timeliness checks
  3. Compute - principal vs conditional day outcomes
  4. Escalation - the expedited-work advisory flag
  5. Phases and submission gate
*/
package timeext_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claim"
	"github.com/warp/claims-engine/timeext"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quantifiedState(claimedDays, approvedDays int) timeext.FormState {
	return timeext.FormState{
		NoticeType: timeext.NoticeQuantified,
		Notice: claim.NoticeRecord{
			SentOn:  date(2025, time.April, 2),
			Methods: []claim.NotificationMethod{claim.NotifyEmail},
		},
		NoticeTimely:         true,
		QuantifiedOn:         date(2025, time.April, 20),
		QuantificationTimely: true,
		ClaimedDays:          claimedDays,
		ApprovedDays:         approvedDays,
		NewCompletionDate:    date(2025, time.August, 1),
		Justification:        "delay driven by redesigned foundations",
	}
}

// =============================================================================
// VISIBILITY
// =============================================================================

func TestComputeVisibility(t *testing.T) {
	tests := []struct {
		name       string
		noticeType timeext.NoticeType
		want       timeext.Visibility
	}{
		{"neutral shows notice fields only", timeext.NoticeNeutral,
			timeext.Visibility{NoticeFields: true}},
		{"quantified shows notice and day-count fields", timeext.NoticeQuantified,
			timeext.Visibility{NoticeFields: true, DayCountFields: true}},
		{"deferred shows neither", timeext.NoticeDeferred, timeext.Visibility{}},
		{"unset shows neither", timeext.NoticeUnset, timeext.Visibility{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timeext.ComputeVisibility(tt.noticeType))
		})
	}
}

// =============================================================================
// FORFEITURE
// =============================================================================

func TestComputeForfeiture_IndependentChecks(t *testing.T) {
	cfg := timeext.Config{}

	t.Run("untimely notice only", func(t *testing.T) {
		state := quantifiedState(10, 10)
		state.NoticeTimely = false

		f := timeext.ComputeForfeiture(state, cfg)
		assert.True(t, f.NoticeUntimely)
		assert.False(t, f.QuantificationUntimely)
	})

	t.Run("untimely quantification only", func(t *testing.T) {
		state := quantifiedState(10, 10)
		state.QuantificationTimely = false

		f := timeext.ComputeForfeiture(state, cfg)
		assert.False(t, f.NoticeUntimely)
		assert.True(t, f.QuantificationUntimely)
	})
}

func TestComputeForfeiture_FormalRequestDeadline(t *testing.T) {
	// GIVEN: the counterpart formally requested quantification by April 15
	cfg := timeext.Config{
		QuantificationRequested: true,
		QuantificationDeadline:  date(2025, time.April, 15),
	}

	// WHEN: quantification landed on April 20, though the evaluator found
	// it otherwise timely
	state := quantifiedState(10, 10)

	// THEN: the request deadline forfeits on its own
	f := timeext.ComputeForfeiture(state, cfg)
	assert.True(t, f.QuantificationUntimely)
}

// =============================================================================
// COMPUTE
// =============================================================================

func TestCompute_UntimelyNoticeForfeitsPrincipalOnly(t *testing.T) {
	// GIVEN: 10 claimed days, 10 approved on the merits, untimely notice
	state := quantifiedState(10, 10)
	state.NoticeTimely = false

	// WHEN
	res := timeext.Compute(state, timeext.Config{})

	// THEN: principal rejected, conditional evaluates as if timely
	assert.Equal(t, claim.OutcomeRejected, res.PrincipalOutcome)
	assert.Equal(t, claim.OutcomeApproved, res.ConditionalOutcome)
	assert.True(t, res.ShowConditionalOutcome)
	require.Len(t, res.ConditionalTriggers, 1)
	assert.Equal(t, "notice", res.ConditionalTriggers[0].Line)
}

func TestCompute_CleanApproval(t *testing.T) {
	res := timeext.Compute(quantifiedState(10, 10), timeext.Config{})

	assert.Equal(t, claim.OutcomeApproved, res.PrincipalOutcome)
	assert.False(t, res.ShowConditionalOutcome)
	assert.False(t, res.EscalationAdvised)
}

func TestCompute_InheritedConditionality(t *testing.T) {
	cfg := timeext.Config{DomainConfig: claim.DomainConfig{InheritedConditional: true}}

	res := timeext.Compute(quantifiedState(10, 10), cfg)

	assert.Equal(t, claim.OutcomeRejected, res.PrincipalOutcome)
	assert.Equal(t, claim.OutcomeApproved, res.ConditionalOutcome)
	assert.True(t, res.ShowConditionalOutcome)
	require.Len(t, res.ConditionalTriggers, 1)
	assert.Equal(t, claim.TriggerInheritedConditional, res.ConditionalTriggers[0].Kind)
}

func TestCompute_NeutralNoticeHasNoOutcome(t *testing.T) {
	state := timeext.FormState{
		NoticeType: timeext.NoticeNeutral,
		Notice: claim.NoticeRecord{
			SentOn:  date(2025, time.April, 2),
			Methods: []claim.NotificationMethod{claim.NotifyLetter},
		},
		NoticeTimely: true,
	}

	res := timeext.Compute(state, timeext.Config{})
	assert.True(t, res.IsUnset())
	assert.Equal(t, timeext.PhaseAwaitingQuantification, res.Phase)
}

func TestCompute_Idempotent(t *testing.T) {
	state := quantifiedState(10, 4)
	cfg := timeext.Config{QuantificationRequested: true, QuantificationDeadline: date(2025, time.May, 1)}

	assert.Equal(t, timeext.Compute(state, cfg), timeext.Compute(state, cfg))
}

// =============================================================================
// ESCALATION
// =============================================================================

func TestEscalationAdvised(t *testing.T) {
	t.Run("rejection escalates", func(t *testing.T) {
		res := timeext.Compute(quantifiedState(10, 0), timeext.Config{})
		assert.True(t, res.EscalationAdvised)
	})

	t.Run("material reduction escalates", func(t *testing.T) {
		res := timeext.Compute(quantifiedState(10, 4), timeext.Config{})
		assert.True(t, res.EscalationAdvised)
	})

	t.Run("half or more does not escalate", func(t *testing.T) {
		res := timeext.Compute(quantifiedState(10, 5), timeext.Config{})
		assert.False(t, res.EscalationAdvised)
	})
}

// =============================================================================
// PHASES
// =============================================================================

func TestDerivePhase(t *testing.T) {
	assert.Equal(t, timeext.PhaseDraft, timeext.DerivePhase(timeext.FormState{}, false))
	assert.Equal(t, timeext.PhaseAwaitingQuantification,
		timeext.DerivePhase(timeext.FormState{NoticeType: timeext.NoticeNeutral}, false))
	assert.Equal(t, timeext.PhaseQuantified,
		timeext.DerivePhase(timeext.FormState{NoticeType: timeext.NoticeQuantified}, false))
	assert.Equal(t, timeext.PhaseResolved,
		timeext.DerivePhase(timeext.FormState{NoticeType: timeext.NoticeQuantified}, true))
}

// =============================================================================
// SUBMISSION GATE
// =============================================================================

func TestValidate(t *testing.T) {
	t.Run("bare preliminary notice, no justification needed", func(t *testing.T) {
		state := timeext.FormState{
			NoticeType: timeext.NoticeNeutral,
			Notice: claim.NoticeRecord{
				SentOn:  date(2025, time.April, 2),
				Methods: []claim.NotificationMethod{claim.NotifyEmail},
			},
		}
		assert.True(t, timeext.CanSubmit(state, timeext.Config{}))
	})

	t.Run("deferred quantification needs justification", func(t *testing.T) {
		state := timeext.FormState{NoticeType: timeext.NoticeDeferred}
		assert.ErrorIs(t, timeext.Validate(state, timeext.Config{}), claim.ErrJustificationTooShort)

		state.Justification = "scope of the obstruction cannot yet be surveyed"
		assert.True(t, timeext.CanSubmit(state, timeext.Config{}))
	})

	t.Run("approved days above claimed days never clamp", func(t *testing.T) {
		state := quantifiedState(10, 12)
		assert.ErrorIs(t, timeext.Validate(state, timeext.Config{}), claim.ErrApprovedExceedsClaimed)
	})

	t.Run("quantified claim missing the new completion date", func(t *testing.T) {
		state := quantifiedState(10, 10)
		state.NewCompletionDate = time.Time{}
		assert.ErrorIs(t, timeext.Validate(state, timeext.Config{}), claim.ErrIncompleteForm)
	})

	t.Run("partial approval needs justification", func(t *testing.T) {
		state := quantifiedState(10, 4)
		state.Justification = ""
		assert.ErrorIs(t, timeext.Validate(state, timeext.Config{}), claim.ErrJustificationTooShort)
	})
}

// =============================================================================
// EVENT PAYLOAD
// =============================================================================

func TestBuildEventData(t *testing.T) {
	state := quantifiedState(10, 10)
	state.NoticeTimely = false
	cfg := timeext.Config{}
	res := timeext.Compute(state, cfg)

	payload := timeext.BuildEventData(state, cfg, res)

	assert.Equal(t, claim.TrackTimeExtension, payload.Track)
	assert.Equal(t, claim.OutcomeRejected, payload.PrincipalOutcome)
	assert.Equal(t, claim.OutcomeApproved, payload.ConditionalOutcome)
	assert.True(t, payload.Forfeiture.NoticeUntimely)
	assert.Equal(t, 10, payload.ClaimedDays)
}

/*
claim_test.go - Tests for the shared vocabulary

ORGANIZATION:
  1. Outcome derivation - the single code path for Approved/Partial/Rejected
  2. Aggregation - totals and the dual outcome over claim lines
  3. Conditional visibility - forfeiture and inheritance triggers
  4. Track vocabulary - Waived/Withheld stay on their tracks
*/
package claim_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claim"
)

func m(v float64) claim.Money { return claim.NewMoney(v) }

// =============================================================================
// OUTCOME DERIVATION
// =============================================================================

func TestDeriveOutcome(t *testing.T) {
	tests := []struct {
		name     string
		claimed  float64
		approved float64
		want     claim.Outcome
	}{
		{"full approval", 230000, 230000, claim.OutcomeApproved},
		{"partial approval", 230000, 100000, claim.OutcomePartial},
		{"zero approval", 230000, 0, claim.OutcomeRejected},
		{"nothing claimed", 0, 0, claim.OutcomeRejected},
		{"small partial", 100, 0.01, claim.OutcomePartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := claim.DeriveOutcome(m(tt.claimed), m(tt.approved))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveDayOutcome(t *testing.T) {
	assert.Equal(t, claim.OutcomeApproved, claim.DeriveDayOutcome(10, 10))
	assert.Equal(t, claim.OutcomePartial, claim.DeriveDayOutcome(10, 4))
	assert.Equal(t, claim.OutcomeRejected, claim.DeriveDayOutcome(10, 0))
	assert.Equal(t, claim.OutcomeRejected, claim.DeriveDayOutcome(0, 0))
}

func TestClaimLine_AssessmentIsDerived(t *testing.T) {
	// GIVEN: a line with amounts
	line := claim.ClaimLine{Claimed: m(50000), Approved: m(50000), ConditionalApproved: m(50000)}

	// THEN: the assessment follows the amounts, with no way to set it apart
	assert.Equal(t, claim.OutcomeApproved, line.Assessment())

	line.Approved = m(20000)
	assert.Equal(t, claim.OutcomePartial, line.Assessment())
	assert.Equal(t, claim.OutcomeApproved, line.ConditionalAssessment())
}

// =============================================================================
// AGGREGATION
// =============================================================================

func TestAggregateLines_ForfeitedLineCountsConditionallyOnly(t *testing.T) {
	// GIVEN: a healthy line and a forfeited line with a conditional approval
	lines := []claim.ClaimLine{
		{Label: "a", Claimed: m(230000), Approved: m(100000), ConditionalApproved: m(100000)},
		{Label: "b", Claimed: m(50000), Forfeited: true, Approved: claim.ZeroMoney(), ConditionalApproved: m(50000)},
	}

	// WHEN: aggregating
	totals := claim.AggregateLines(lines)

	// THEN: forfeiture zeroes the principal side only
	assert.True(t, totals.ClaimedIncludingForfeited.Equal(m(280000)))
	assert.True(t, totals.Claimed.Equal(m(230000)))
	assert.True(t, totals.ApprovedPrincipal.Equal(m(100000)))
	assert.True(t, totals.ApprovedIncludingConditional.Equal(m(150000)))
}

func TestAggregateLines_ConditionalIsSupersetOfPrincipal(t *testing.T) {
	lines := []claim.ClaimLine{
		{Claimed: m(100), Approved: m(100), ConditionalApproved: m(100)},
		{Claimed: m(200), Forfeited: true, ConditionalApproved: m(150)},
		{Claimed: m(300), Approved: m(50), ConditionalApproved: m(50)},
	}
	totals := claim.AggregateLines(lines)
	assert.False(t, totals.ApprovedIncludingConditional.LessThan(totals.ApprovedPrincipal),
		"conditional approval must never fall below principal approval")
}

func TestAggregateOutcome_DualDerivation(t *testing.T) {
	lines := []claim.ClaimLine{
		{Claimed: m(1000), Forfeited: true, ConditionalApproved: m(1000)},
	}

	assert.Equal(t, claim.OutcomeRejected, claim.AggregateOutcome(lines, false))
	assert.Equal(t, claim.OutcomeApproved, claim.AggregateOutcome(lines, true))
}

func TestApprovalRatio_ZeroWhenNothingClaimed(t *testing.T) {
	totals := claim.AggregateLines(nil)
	assert.True(t, totals.ApprovalRatio().IsZero())
}

// =============================================================================
// CONDITIONAL VISIBILITY
// =============================================================================

func TestConditionalVisibility(t *testing.T) {
	healthy := claim.ClaimLine{Label: "main claim", Claimed: m(100), Approved: m(100),
		ConditionalApproved: m(100), RequiresTimelyNotice: true, TimelyNotice: true}
	forfeited := claim.ClaimLine{Label: "site overhead", Claimed: m(50), Forfeited: true,
		ConditionalApproved: m(50), RequiresTimelyNotice: true, TimelyNotice: false}

	t.Run("hidden when nothing forfeited", func(t *testing.T) {
		show, triggers := claim.ConditionalVisibility([]claim.ClaimLine{healthy}, false)
		assert.False(t, show)
		assert.Empty(t, triggers)
	})

	t.Run("shown for a forfeited line", func(t *testing.T) {
		show, triggers := claim.ConditionalVisibility([]claim.ClaimLine{healthy, forfeited}, false)
		assert.True(t, show)
		require.Len(t, triggers, 1)
		assert.Equal(t, claim.TriggerLineForfeited, triggers[0].Kind)
		assert.Equal(t, "site overhead", triggers[0].Line)
	})

	t.Run("shown for inherited conditionality", func(t *testing.T) {
		show, triggers := claim.ConditionalVisibility([]claim.ClaimLine{healthy}, true)
		assert.True(t, show)
		require.Len(t, triggers, 1)
		assert.Equal(t, claim.TriggerInheritedConditional, triggers[0].Kind)
	})
}

// =============================================================================
// TRACK VOCABULARY
// =============================================================================

func TestOutcomesFor_TrackSpecificOutcomes(t *testing.T) {
	assert.Contains(t, claim.OutcomesFor(claim.TrackLegalBasis), claim.OutcomeWaived)
	assert.NotContains(t, claim.OutcomesFor(claim.TrackLegalBasis), claim.OutcomeWithheld)

	assert.Contains(t, claim.OutcomesFor(claim.TrackCompensation), claim.OutcomeWithheld)
	assert.NotContains(t, claim.OutcomesFor(claim.TrackCompensation), claim.OutcomeWaived)

	assert.NotContains(t, claim.OutcomesFor(claim.TrackTimeExtension), claim.OutcomeWaived)
	assert.NotContains(t, claim.OutcomesFor(claim.TrackTimeExtension), claim.OutcomeWithheld)
}

func TestParseTrack(t *testing.T) {
	track, err := claim.ParseTrack("compensation")
	require.NoError(t, err)
	assert.Equal(t, claim.TrackCompensation, track)

	_, err = claim.ParseTrack("bogus")
	assert.ErrorIs(t, err, claim.ErrUnknownTrack)
}

// =============================================================================
// NOTICES
// =============================================================================

func TestNoticeRecord_Timely(t *testing.T) {
	deadline := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	onTime := claim.NoticeRecord{SentOn: deadline, Methods: []claim.NotificationMethod{claim.NotifyEmail}}
	late := claim.NoticeRecord{SentOn: deadline.AddDate(0, 0, 1)}

	assert.True(t, onTime.Timely(deadline))
	assert.False(t, late.Timely(deadline))
	assert.True(t, late.Timely(time.Time{}), "no deadline means timely")
}

// =============================================================================
// ERRORS
// =============================================================================

func TestExcessApprovalError_Unwraps(t *testing.T) {
	err := &claim.ExcessApprovalError{Line: "main claim", Claimed: m(100), Approved: m(200)}
	assert.ErrorIs(t, err, claim.ErrApprovedExceedsClaimed)
	assert.True(t, claim.IsValidation(err))
	assert.Contains(t, err.Error(), "main claim")
}

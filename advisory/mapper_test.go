package advisory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/claims-engine/advisory"
	"github.com/warp/claims-engine/claim"
)

func TestAdvise_TableHits(t *testing.T) {
	tests := []struct {
		name    string
		track   claim.Track
		outcome claim.Outcome
		ctx     advisory.Context
		want    advisory.Severity
	}{
		{"legal basis approved", claim.TrackLegalBasis, claim.OutcomeApproved, advisory.Context{}, advisory.SeveritySuccess},
		{"legal basis rejected", claim.TrackLegalBasis, claim.OutcomeRejected, advisory.Context{}, advisory.SeverityDanger},
		{"legal basis forfeited", claim.TrackLegalBasis, claim.OutcomeRejected, advisory.Context{Conditional: true}, advisory.SeverityWarning},
		{"legal basis waived", claim.TrackLegalBasis, claim.OutcomeWaived, advisory.Context{}, advisory.SeverityInfo},
		{"time extension partial suggests expedited work", claim.TrackTimeExtension, claim.OutcomePartial, advisory.Context{}, advisory.SeverityWarning},
		{"time extension rejected suggests expedited work", claim.TrackTimeExtension, claim.OutcomeRejected, advisory.Context{}, advisory.SeverityDanger},
		{"compensation withheld", claim.TrackCompensation, claim.OutcomeWithheld, advisory.Context{}, advisory.SeverityInfo},
		{"compensation rejected on force majeure", claim.TrackCompensation, claim.OutcomeRejected, advisory.Context{ForceMajeure: true}, advisory.SeverityInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := advisory.Advise(tt.track, tt.outcome, tt.ctx)
			assert.Equal(t, tt.want, got.Severity)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestAdvise_ForceMajeureFallsBackToBaseEntry(t *testing.T) {
	// No dedicated (Partial, force majeure) entry exists for compensation;
	// the mapper retries without the force-majeure dimension.
	withFM := advisory.Advise(claim.TrackCompensation, claim.OutcomePartial, advisory.Context{ForceMajeure: true})
	without := advisory.Advise(claim.TrackCompensation, claim.OutcomePartial, advisory.Context{})
	assert.Equal(t, without, withFM)
}

func TestAdvise_GenericFallback(t *testing.T) {
	// Waived never occurs on the compensation track, so only the generic
	// fallback can serve it.
	got := advisory.Advise(claim.TrackCompensation, claim.OutcomeWaived, advisory.Context{})
	assert.Equal(t, advisory.SeverityInfo, got.Severity)
	assert.NotEmpty(t, got.Message)
}

func TestAdvise_UnsetOutcome(t *testing.T) {
	got := advisory.Advise(claim.TrackLegalBasis, claim.OutcomeUnset, advisory.Context{})
	assert.Equal(t, advisory.SeverityInfo, got.Severity)
}

package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/claims-engine/claim"
	"github.com/warp/claims-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "claims.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveResponse_FillsIDAndTimestamp(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	saved, err := store.SaveResponse(ctx, sqlite.Response{
		ClaimID:          "claim-42",
		Track:            claim.TrackLegalBasis,
		PrincipalOutcome: claim.OutcomeApproved,
		Payload:          json.RawMessage(`{"track":"legal_basis"}`),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestSaveAndGetResponse_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	payload := json.RawMessage(`{"track":"compensation","total_approved":"100000"}`)
	saved, err := store.SaveResponse(ctx, sqlite.Response{
		ClaimID:            "claim-42",
		Track:              claim.TrackCompensation,
		PrincipalOutcome:   claim.OutcomePartial,
		ConditionalOutcome: claim.OutcomePartial,
		Payload:            payload,
	})
	require.NoError(t, err)

	got, err := store.GetResponse(ctx, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "claim-42", got.ClaimID)
	assert.Equal(t, claim.TrackCompensation, got.Track)
	assert.Equal(t, claim.OutcomePartial, got.PrincipalOutcome)
	assert.Equal(t, claim.OutcomePartial, got.ConditionalOutcome)
	assert.JSONEq(t, string(payload), string(got.Payload))
}

func TestGetResponse_NotFound(t *testing.T) {
	store := newStore(t)

	_, err := store.GetResponse(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, claim.ErrResponseNotFound)
}

func TestListResponsesByClaim_NewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	// A correction is a new response on the same claim, never an edit.
	base := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	for i, outcome := range []claim.Outcome{claim.OutcomeRejected, claim.OutcomeApproved} {
		_, err := store.SaveResponse(ctx, sqlite.Response{
			ClaimID:          "claim-42",
			Track:            claim.TrackLegalBasis,
			PrincipalOutcome: outcome,
			Payload:          json.RawMessage(`{}`),
			CreatedAt:        base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := store.SaveResponse(ctx, sqlite.Response{
		ClaimID:          "claim-other",
		Track:            claim.TrackLegalBasis,
		PrincipalOutcome: claim.OutcomeApproved,
		Payload:          json.RawMessage(`{}`),
	})
	require.NoError(t, err)

	got, err := store.ListResponsesByClaim(ctx, "claim-42")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, claim.OutcomeApproved, got[0].PrincipalOutcome, "newest response first")
	assert.Equal(t, claim.OutcomeRejected, got[1].PrincipalOutcome)
}

func TestListResponsesByTrack(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, track := range []claim.Track{claim.TrackLegalBasis, claim.TrackTimeExtension, claim.TrackLegalBasis} {
		_, err := store.SaveResponse(ctx, sqlite.Response{
			ClaimID:          "claim-42",
			Track:            track,
			PrincipalOutcome: claim.OutcomeApproved,
			Payload:          json.RawMessage(`{}`),
		})
		require.NoError(t, err)
	}

	got, err := store.ListResponsesByTrack(ctx, claim.TrackLegalBasis)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	empty, err := store.ListResponsesByTrack(ctx, claim.TrackCompensation)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

/*
handlers.go - HTTP API handlers for the claim-resolution engine

PURPOSE:
  Exposes the track engines via REST. Handles HTTP request/response, JSON
  serialization, input-shape validation, and delegates every claim rule to
  the engine packages. No contractual logic lives here.

ENDPOINTS:
  Evaluations:
    POST /api/evaluations/{track}/compute  Compute a result from form state
    POST /api/evaluations/{track}/submit   Validate, build payload, persist

  History:
    GET  /api/claims/{claimID}/responses   Full history of one claim
    GET  /api/tracks/{track}/responses     All responses of one track
    GET  /api/responses/{id}               Single stored response

REQUEST FLOW:
  1. Parse HTTP request and dates
  2. Input-shape validation (400 before the engine sees anything)
  3. Call the track engine (pure functions)
  4. Serialize response / persist payload
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed input (bad dates, negative day counts, missing body)
  - 404: Unknown track or missing response
  - 422: Engine validation refuses submission
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/claims-engine/advisory"
	"github.com/warp/claims-engine/claim"
	"github.com/warp/claims-engine/compensation"
	"github.com/warp/claims-engine/legalbasis"
	"github.com/warp/claims-engine/store/sqlite"
	"github.com/warp/claims-engine/timeext"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{Store: store}
}

// =============================================================================
// EVALUATION HANDLERS
// =============================================================================

// Compute runs a track engine over the submitted form state and returns
// the computed result, the advisory mapping, and the submission gate.
// Identical bodies always produce identical responses.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	track, req, ok := h.decodeEvaluate(w, r)
	if !ok {
		return
	}

	resp, _, _, err := h.evaluate(track, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid evaluation input", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Submit validates the form state, builds the track's event payload, and
// appends it to the claim history.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	track, req, ok := h.decodeEvaluate(w, r)
	if !ok {
		return
	}
	if req.ClaimID == "" {
		writeError(w, http.StatusBadRequest, "claim_id is required for submission", nil)
		return
	}

	_, validate, payload, err := h.evaluate(track, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid evaluation input", err)
		return
	}
	if verr := validate(); verr != nil {
		writeError(w, http.StatusUnprocessableEntity, "Submission blocked by validation", verr)
		return
	}

	raw, err := json.Marshal(payload.body)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to serialize payload", err)
		return
	}

	stored, err := h.Store.SaveResponse(r.Context(), sqlite.Response{
		ClaimID:            req.ClaimID,
		Track:              track,
		PrincipalOutcome:   payload.principal,
		ConditionalOutcome: payload.conditional,
		Payload:            raw,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store response", err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponseDTO(stored))
}

// =============================================================================
// HISTORY HANDLERS
// =============================================================================

// ListClaimResponses returns a claim's full response history.
func (h *Handler) ListClaimResponses(w http.ResponseWriter, r *http.Request) {
	claimID := chi.URLParam(r, "claimID")

	responses, err := h.Store.ListResponsesByClaim(r.Context(), claimID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list responses", err)
		return
	}

	dtos := make([]ResponseDTO, len(responses))
	for i, resp := range responses {
		dtos[i] = toResponseDTO(resp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListTrackResponses returns all responses submitted on one track.
func (h *Handler) ListTrackResponses(w http.ResponseWriter, r *http.Request) {
	track, err := claim.ParseTrack(chi.URLParam(r, "track"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown track", err)
		return
	}

	responses, err := h.Store.ListResponsesByTrack(r.Context(), track)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list responses", err)
		return
	}

	dtos := make([]ResponseDTO, len(responses))
	for i, resp := range responses {
		dtos[i] = toResponseDTO(resp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetResponse returns a single stored response.
func (h *Handler) GetResponse(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	resp, err := h.Store.GetResponse(r.Context(), id)
	if err != nil {
		if claim.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Response not found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get response", err)
		return
	}
	writeJSON(w, http.StatusOK, toResponseDTO(*resp))
}

// =============================================================================
// TRACK DISPATCH
// =============================================================================

// storedPayload carries what the submission path persists.
type storedPayload struct {
	body        any
	principal   claim.Outcome
	conditional claim.Outcome
}

// decodeEvaluate parses the track from the URL and the request body.
func (h *Handler) decodeEvaluate(w http.ResponseWriter, r *http.Request) (claim.Track, EvaluateRequest, bool) {
	track, err := claim.ParseTrack(chi.URLParam(r, "track"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Unknown track", err)
		return "", EvaluateRequest{}, false
	}

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return "", EvaluateRequest{}, false
	}
	return track, req, true
}

// evaluate dispatches to the right track engine. It returns the compute
// response, a deferred validation closure for the submit path, and the
// payload the submit path persists.
func (h *Handler) evaluate(track claim.Track, req EvaluateRequest) (ComputeResponse, func() error, storedPayload, error) {
	switch track {
	case claim.TrackLegalBasis:
		return h.evaluateLegalBasis(req)
	case claim.TrackTimeExtension:
		return h.evaluateTimeExtension(req)
	case claim.TrackCompensation:
		return h.evaluateCompensation(req)
	}
	return ComputeResponse{}, nil, storedPayload{}, claim.ErrUnknownTrack
}

func (h *Handler) evaluateLegalBasis(req EvaluateRequest) (ComputeResponse, func() error, storedPayload, error) {
	if req.LegalBasis == nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("legal_basis state is required")
	}
	cfg := req.Config.toDomain()

	lastNotice, err := parseOptionalDate(req.LegalBasis.LastNoticeAt)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("invalid last_notice_at: %w", err)
	}
	asOf, err := resolveAsOf(req.AsOf)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, err
	}

	state := legalbasis.FormState{
		Outcome:           claim.Outcome(req.LegalBasis.Outcome),
		ForfeitureFound:   req.LegalBasis.ForfeitureFound,
		ForfeitureGrounds: req.LegalBasis.ForfeitureGrounds,
		LastNoticeAt:      lastNotice,
		Justification:     req.LegalBasis.Justification,
	}

	res := legalbasis.Compute(state, cfg, asOf)
	resp := ComputeResponse{
		Track:  string(claim.TrackLegalBasis),
		Result: res,
		Advice: advisory.Advise(claim.TrackLegalBasis, res.PrincipalOutcome,
			advisory.Context{Conditional: res.ShowConditionalOutcome, ForceMajeure: cfg.ForceMajeure}),
		CanSubmit: legalbasis.CanSubmit(state, cfg),
	}
	payload := storedPayload{
		body:      legalbasis.BuildEventData(state, cfg, res),
		principal: res.PrincipalOutcome,
	}
	if res.ShowConditionalOutcome {
		payload.conditional = res.ConditionalOutcome
	}
	return resp, func() error { return legalbasis.Validate(state, cfg) }, payload, nil
}

func (h *Handler) evaluateTimeExtension(req EvaluateRequest) (ComputeResponse, func() error, storedPayload, error) {
	if req.TimeExtension == nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("time_extension state is required")
	}
	// Malformed day counts never reach the engine.
	if req.TimeExtension.ClaimedDays < 0 || req.TimeExtension.ApprovedDays < 0 {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("day counts must be non-negative")
	}

	cfg, err := req.Config.toTimeExtension()
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("invalid quantification_deadline: %w", err)
	}

	sentOn, err := parseOptionalDate(req.TimeExtension.NoticeSentOn)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("invalid notice_sent_on: %w", err)
	}
	quantifiedOn, err := parseOptionalDate(req.TimeExtension.QuantifiedOn)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("invalid quantified_on: %w", err)
	}
	newEnd, err := parseOptionalDate(req.TimeExtension.NewCompletionDate)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("invalid new_completion_date: %w", err)
	}

	methods := make([]claim.NotificationMethod, len(req.TimeExtension.NoticeMethods))
	for i, m := range req.TimeExtension.NoticeMethods {
		methods[i] = claim.NotificationMethod(m)
	}

	state := timeext.FormState{
		NoticeType:           timeext.NoticeType(req.TimeExtension.NoticeType),
		Notice:               claim.NoticeRecord{SentOn: sentOn, Methods: methods},
		NoticeTimely:         req.TimeExtension.NoticeTimely,
		QuantifiedOn:         quantifiedOn,
		QuantificationTimely: req.TimeExtension.QuantificationTimely,
		ClaimedDays:          req.TimeExtension.ClaimedDays,
		ApprovedDays:         req.TimeExtension.ApprovedDays,
		NewCompletionDate:    newEnd,
		Justification:        req.TimeExtension.Justification,
	}

	res := timeext.Compute(state, cfg)
	resp := ComputeResponse{
		Track:  string(claim.TrackTimeExtension),
		Result: res,
		Advice: advisory.Advise(claim.TrackTimeExtension, res.PrincipalOutcome,
			advisory.Context{Conditional: res.ShowConditionalOutcome, ForceMajeure: cfg.ForceMajeure}),
		CanSubmit: timeext.CanSubmit(state, cfg),
	}
	payload := storedPayload{
		body:      timeext.BuildEventData(state, cfg, res),
		principal: res.PrincipalOutcome,
	}
	if res.ShowConditionalOutcome {
		payload.conditional = res.ConditionalOutcome
	}
	return resp, func() error { return timeext.Validate(state, cfg) }, payload, nil
}

func (h *Handler) evaluateCompensation(req EvaluateRequest) (ComputeResponse, func() error, storedPayload, error) {
	if req.Compensation == nil {
		return ComputeResponse{}, nil, storedPayload{}, fmt.Errorf("compensation state is required")
	}
	cfg := req.Config.toDomain()

	main, err := toLineInput(req.Compensation.Main)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, err
	}
	overhead, err := toLineInput(req.Compensation.SiteOverhead)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, err
	}
	productivity, err := toLineInput(req.Compensation.ProductivityLoss)
	if err != nil {
		return ComputeResponse{}, nil, storedPayload{}, err
	}

	state := compensation.FormState{
		Main:             main,
		SiteOverhead:     overhead,
		ProductivityLoss: productivity,
		MethodAccepted:   req.Compensation.MethodAccepted,
		CounterMethod:    claim.SettlementMethod(req.Compensation.CounterMethod),
		RevisedRates:     toSubEvaluation(req.Compensation.RevisedRates),
		Withholding:      toSubEvaluation(req.Compensation.Withholding),
		Justification:    req.Compensation.Justification,
	}

	res := compensation.Compute(state, cfg)
	resp := ComputeResponse{
		Track:  string(claim.TrackCompensation),
		Result: res,
		Advice: advisory.Advise(claim.TrackCompensation, res.PrincipalOutcome,
			advisory.Context{Conditional: res.ShowConditionalOutcome, ForceMajeure: cfg.ForceMajeure}),
		CanSubmit: compensation.CanSubmit(state, cfg),
	}
	payload := storedPayload{
		body:      compensation.BuildEventData(state, cfg, res),
		principal: res.PrincipalOutcome,
	}
	if res.ShowConditionalOutcome {
		payload.conditional = res.ConditionalOutcome
	}
	return resp, func() error { return compensation.Validate(state, cfg) }, payload, nil
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toLineInput(dto *LineInputDTO) (*compensation.LineInput, error) {
	if dto == nil {
		return nil, nil
	}
	noticeDate, err := parseOptionalDate(dto.NoticeDate)
	if err != nil {
		return nil, fmt.Errorf("invalid notice_date: %w", err)
	}
	return &compensation.LineInput{
		LegalReference:       dto.LegalReference,
		Claimed:              dto.Claimed,
		RequiresTimelyNotice: dto.RequiresTimelyNotice,
		NoticeDate:           noticeDate,
		NoticeTimely:         dto.NoticeTimely,
		Approved:             dto.Approved,
	}, nil
}

func toSubEvaluation(dto SubEvaluationDTO) compensation.SubEvaluation {
	return compensation.SubEvaluation{
		Active:       dto.Active,
		NoticeTimely: dto.NoticeTimely,
		Accepted:     dto.Accepted,
	}
}

func toResponseDTO(r sqlite.Response) ResponseDTO {
	return ResponseDTO{
		ID:                 r.ID,
		ClaimID:            r.ClaimID,
		Track:              string(r.Track),
		PrincipalOutcome:   string(r.PrincipalOutcome),
		ConditionalOutcome: string(r.ConditionalOutcome),
		Payload:            r.Payload,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
}

// resolveAsOf pins the evaluation date; an empty value means today.
func resolveAsOf(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := parseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_of: %w", err)
	}
	return t, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := errorResponse{Error: msg}
	if err != nil {
		resp.Detail = err.Error()
	}
	writeJSON(w, status, resp)
}

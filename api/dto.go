/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *StateDTO: Per-track form state sent by clients
  - EvaluateRequest: The common request envelope for compute and submit

DATES:
  All dates travel as "YYYY-MM-DD" strings; parsing happens in the
  handlers, and a bad date is a 400 before anything reaches the engine.

VALIDATION:
  Input-shape validation (malformed dates, negative day counts) is done in
  handlers. Business-rule validation lives in the track engines' Validate
  functions. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - claim: the vocabulary the DTOs map onto
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/claims-engine/advisory"
	"github.com/warp/claims-engine/claim"
	"github.com/warp/claims-engine/timeext"
)

// =============================================================================
// REQUEST ENVELOPE
// =============================================================================

// EvaluateRequest is the body of both compute and submit calls. Exactly
// one of the per-track state blocks must match the track in the URL.
type EvaluateRequest struct {
	// ClaimID ties the submission into the claim history. Required for
	// submit, ignored for compute.
	ClaimID string `json:"claim_id,omitempty"`

	// AsOf pins "today" for the passivity check so identical requests
	// compute identical results. Defaults to the current date.
	AsOf string `json:"as_of,omitempty"`

	Config DomainConfigDTO `json:"config"`

	LegalBasis    *LegalBasisStateDTO    `json:"legal_basis,omitempty"`
	TimeExtension *TimeExtensionStateDTO `json:"time_extension,omitempty"`
	Compensation  *CompensationStateDTO  `json:"compensation,omitempty"`
}

// DomainConfigDTO carries the immutable session context, plus the
// Time-Extension-only quantification-request fields.
type DomainConfigDTO struct {
	Category               string `json:"category"`
	ForceMajeure           bool   `json:"force_majeure,omitempty"`
	Mechanism              string `json:"mechanism,omitempty"`
	InheritedConditional   bool   `json:"inherited_conditional,omitempty"`
	ClaimedMethod          string `json:"claimed_method,omitempty"`
	SiteOverheadRaised     bool   `json:"site_overhead_raised,omitempty"`
	ProductivityLossRaised bool   `json:"productivity_loss_raised,omitempty"`

	QuantificationRequested bool   `json:"quantification_requested,omitempty"`
	QuantificationDeadline  string `json:"quantification_deadline,omitempty"`
}

func (d DomainConfigDTO) toDomain() claim.DomainConfig {
	return claim.DomainConfig{
		Category:               claim.EventCategory(d.Category),
		ForceMajeure:           d.ForceMajeure,
		Mechanism:              claim.TriggerMechanism(d.Mechanism),
		InheritedConditional:   d.InheritedConditional,
		ClaimedMethod:          claim.SettlementMethod(d.ClaimedMethod),
		SiteOverheadRaised:     d.SiteOverheadRaised,
		ProductivityLossRaised: d.ProductivityLossRaised,
	}
}

func (d DomainConfigDTO) toTimeExtension() (timeext.Config, error) {
	cfg := timeext.Config{
		DomainConfig:            d.toDomain(),
		QuantificationRequested: d.QuantificationRequested,
	}
	if d.QuantificationDeadline != "" {
		t, err := parseDate(d.QuantificationDeadline)
		if err != nil {
			return timeext.Config{}, err
		}
		cfg.QuantificationDeadline = t
	}
	return cfg, nil
}

// =============================================================================
// PER-TRACK FORM STATE
// =============================================================================

type LegalBasisStateDTO struct {
	Outcome           string `json:"outcome,omitempty"`
	ForfeitureFound   bool   `json:"forfeiture_found,omitempty"`
	ForfeitureGrounds string `json:"forfeiture_grounds,omitempty"`
	LastNoticeAt      string `json:"last_notice_at,omitempty"`
	Justification     string `json:"justification,omitempty"`
}

type TimeExtensionStateDTO struct {
	NoticeType           string   `json:"notice_type"`
	NoticeSentOn         string   `json:"notice_sent_on,omitempty"`
	NoticeMethods        []string `json:"notice_methods,omitempty"`
	NoticeTimely         bool     `json:"notice_timely,omitempty"`
	QuantifiedOn         string   `json:"quantified_on,omitempty"`
	QuantificationTimely bool     `json:"quantification_timely,omitempty"`
	ClaimedDays          int      `json:"claimed_days,omitempty"`
	ApprovedDays         int      `json:"approved_days,omitempty"`
	NewCompletionDate    string   `json:"new_completion_date,omitempty"`
	Justification        string   `json:"justification,omitempty"`
}

type LineInputDTO struct {
	LegalReference       string      `json:"legal_reference,omitempty"`
	Claimed              claim.Money `json:"claimed"`
	RequiresTimelyNotice bool        `json:"requires_timely_notice,omitempty"`
	NoticeDate           string      `json:"notice_date,omitempty"`
	NoticeTimely         bool        `json:"notice_timely,omitempty"`
	Approved             claim.Money `json:"approved"`
}

type SubEvaluationDTO struct {
	Active       bool `json:"active,omitempty"`
	NoticeTimely bool `json:"notice_timely,omitempty"`
	Accepted     bool `json:"accepted,omitempty"`
}

type CompensationStateDTO struct {
	Main             *LineInputDTO    `json:"main,omitempty"`
	SiteOverhead     *LineInputDTO    `json:"site_overhead,omitempty"`
	ProductivityLoss *LineInputDTO    `json:"productivity_loss,omitempty"`
	MethodAccepted   bool             `json:"method_accepted,omitempty"`
	CounterMethod    string           `json:"counter_method,omitempty"`
	RevisedRates     SubEvaluationDTO `json:"revised_rates,omitempty"`
	Withholding      SubEvaluationDTO `json:"withholding,omitempty"`
	Justification    string           `json:"justification,omitempty"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// ComputeResponse wraps a track's computed result with the advisory
// mapping and the submission gate.
type ComputeResponse struct {
	Track     string          `json:"track"`
	Result    any             `json:"result"`
	Advice    advisory.Advice `json:"advice"`
	CanSubmit bool            `json:"can_submit"`
}

// ResponseDTO is a stored history entry in API responses.
type ResponseDTO struct {
	ID                 string          `json:"id"`
	ClaimID            string          `json:"claim_id"`
	Track              string          `json:"track"`
	PrincipalOutcome   string          `json:"principal_outcome"`
	ConditionalOutcome string          `json:"conditional_outcome,omitempty"`
	Payload            json.RawMessage `json:"payload"`
	CreatedAt          string          `json:"created_at"`
}

// =============================================================================
// DATE HELPERS
// =============================================================================

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}

// Package suggest produces ranked alternative clause phrasings with
// confidence scores, backed by an external rewrite provider with a
// deterministic rule-based fallback.
package suggest

import (
	"time"

	"github.com/google/uuid"

	"github.com/clauselens/clauselens/internal/compliance"
)

// SuggestionType is the declared improvement intent of a suggestion.
type SuggestionType string

const (
	SuggestionImprovement   SuggestionType = "IMPROVEMENT"
	SuggestionCompliance    SuggestionType = "COMPLIANCE"
	SuggestionRiskReduction SuggestionType = "RISK_REDUCTION"
	SuggestionClarity       SuggestionType = "CLARITY"
	SuggestionLegalStrength SuggestionType = "LEGAL_STRENGTH"
)

// categoryPriority fixes the tie-break order between suggestion types:
// COMPLIANCE outranks RISK_REDUCTION outranks CLARITY outranks
// LEGAL_STRENGTH outranks IMPROVEMENT.
var categoryPriority = map[SuggestionType]int{
	SuggestionCompliance:    0,
	SuggestionRiskReduction: 1,
	SuggestionClarity:       2,
	SuggestionLegalStrength: 3,
	SuggestionImprovement:   4,
}

// Priority returns the rank of the suggestion type in the fixed category
// order; lower ranks sort first on confidence ties.
func (t SuggestionType) Priority() int {
	if p, ok := categoryPriority[t]; ok {
		return p
	}
	return len(categoryPriority)
}

// SuggestionSource records where a suggestion came from.
type SuggestionSource string

const (
	SourceAI           SuggestionSource = "AI"
	SourcePrecedent    SuggestionSource = "PRECEDENT"
	SourceBestPractice SuggestionSource = "BEST_PRACTICE"
	SourceUser         SuggestionSource = "USER"
)

// SuggestionStatus is the acceptance state of a suggestion. PENDING is
// the only non-terminal state; the engine never transitions it.
type SuggestionStatus string

const (
	StatusPending  SuggestionStatus = "PENDING"
	StatusAccepted SuggestionStatus = "ACCEPTED"
	StatusRejected SuggestionStatus = "REJECTED"
)

// ClauseSuggestion is a ranked, scored alternative clause rewrite.
type ClauseSuggestion struct {
	ID                     uuid.UUID        `json:"id"`
	OriginalClause         string           `json:"original_clause"`
	SuggestedClause        string           `json:"suggested_clause"`
	Type                   SuggestionType   `json:"type"`
	Confidence             float64          `json:"confidence"`
	Benefits               []string         `json:"benefits"`
	Risks                  []string         `json:"risks"`
	ComplianceImprovements []string         `json:"compliance_improvements"`
	Source                 SuggestionSource `json:"source"`
	Status                 SuggestionStatus `json:"status"`
	AcceptedBy             string           `json:"accepted_by,omitempty"`
	AcceptedAt             *time.Time       `json:"accepted_at,omitempty"`
	RejectionReason        string           `json:"rejection_reason,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
}

// Accept records acceptance by an external caller. Terminal.
func (s *ClauseSuggestion) Accept(by string, at time.Time) {
	s.Status = StatusAccepted
	s.AcceptedBy = by
	s.AcceptedAt = &at
}

// Reject records rejection by an external caller. Terminal.
func (s *ClauseSuggestion) Reject(reason string) {
	s.Status = StatusRejected
	s.RejectionReason = reason
}

// SuggestionRequest asks the engine for alternative phrasings of one
// clause with the given improvement intents.
type SuggestionRequest struct {
	OriginalClause string                 `json:"original_clause"`
	ClauseID       string                 `json:"clause_id,omitempty"`
	Frameworks     []compliance.Framework `json:"frameworks"`
	Jurisdiction   string                 `json:"jurisdiction,omitempty"`
	ClientID       string                 `json:"client_id,omitempty"`
	Improvements   []SuggestionType       `json:"improvements"`
	MaxSuggestions int                    `json:"max_suggestions,omitempty"`
}

// ClauseTemplate is a stored reference clause the matcher compares
// against. Template storage and versioning live outside the engine.
type ClauseTemplate struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
	Text     string `json:"text"`
}

// Span is a half-open byte-offset range [Start, End) into the input
// clause.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ClauseTemplateMatch scores one template against the input clause.
type ClauseTemplateMatch struct {
	TemplateID   string  `json:"template_id"`
	TemplateName string  `json:"template_name"`
	Score        float64 `json:"score"`
	Spans        []Span  `json:"spans"`
}

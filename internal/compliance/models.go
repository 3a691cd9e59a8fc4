// Package compliance defines the shared domain model for contract
// compliance evaluation: rules, violations, per-framework scores and
// aggregated contract analyses.
package compliance

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel represents the ordered severity classification used across
// rules, violations, scores and analytics.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

// Rank returns the ordinal position of the risk level (LOW=1 .. CRITICAL=4).
// Unknown levels rank as MEDIUM to avoid silently dropping severity.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelCritical:
		return 4
	default:
		return 2
	}
}

// Worse reports whether r is a higher severity than other.
func (r RiskLevel) Worse(other RiskLevel) bool {
	return r.Rank() > other.Rank()
}

// Framework identifies a regulatory regime a clause is evaluated against.
type Framework string

const (
	FrameworkGDPR   Framework = "GDPR"
	FrameworkCCPA   Framework = "CCPA"
	FrameworkHIPAA  Framework = "HIPAA"
	FrameworkSOX    Framework = "SOX"
	FrameworkPCIDSS Framework = "PCI_DSS"
	FrameworkCustom Framework = "CUSTOM"
)

// ComplianceRule is a scoped keyword/pattern detector tied to one framework
// and category. Rules are immutable once published into a repository
// snapshot; updates replace the whole snapshot.
type ComplianceRule struct {
	ID              string    `json:"id" yaml:"id" validate:"required"`
	Name            string    `json:"name" yaml:"name" validate:"required"`
	Framework       Framework `json:"framework" yaml:"framework" validate:"required"`
	Category        string    `json:"category" yaml:"category" validate:"required"`
	Keywords        []string  `json:"keywords" yaml:"keywords"`
	Patterns        []string  `json:"patterns" yaml:"patterns"`
	Severity        RiskLevel `json:"severity" yaml:"severity" validate:"required,oneof=LOW MEDIUM HIGH CRITICAL"`
	Weight          float64   `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
	Jurisdiction    string    `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	ClientID        string    `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Description     string    `json:"description" yaml:"description"`
	Explanation     string    `json:"explanation" yaml:"explanation"`
	SuggestedAction string    `json:"suggested_action" yaml:"suggested_action"`
	IsActive        bool      `json:"is_active" yaml:"is_active"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at"`
}

// ComplianceViolation is a detected rule trigger against a specific clause.
// Violations are created by the evaluator; only the external resolution
// workflow mutates the resolution fields.
type ComplianceViolation struct {
	ID              uuid.UUID  `json:"id"`
	RuleID          string     `json:"rule_id"`
	RuleName        string     `json:"rule_name"`
	ClauseID        string     `json:"clause_id"`
	Category        string     `json:"category"`
	Severity        RiskLevel  `json:"severity"`
	Description     string     `json:"description"`
	Explanation     string     `json:"explanation"`
	SuggestedAction string     `json:"suggested_action"`
	DetectedAt      time.Time  `json:"detected_at"`
	Resolved        bool       `json:"resolved"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`
}

// Resolve marks the violation resolved at the given time. Called by the
// external resolution workflow, never by the scoring pipeline.
func (v *ComplianceViolation) Resolve(at time.Time) {
	v.Resolved = true
	v.ResolvedAt = &at
}

// ComplianceScore is the scored result for one framework.
type ComplianceScore struct {
	Framework       Framework             `json:"framework"`
	OverallScore    float64               `json:"overall_score"`
	RiskLevel       RiskLevel             `json:"risk_level"`
	Violations      []ComplianceViolation `json:"violations"`
	Recommendations []string              `json:"recommendations"`
	Timestamp       time.Time             `json:"timestamp"`
}

// ContractComplianceAnalysis is the contract-level roll-up of all evaluated
// framework scores. Constructed by the aggregator and owned by the caller.
type ContractComplianceAnalysis struct {
	ContractID         string                `json:"contract_id"`
	ClientID           string                `json:"client_id,omitempty"`
	DocumentName       string                `json:"document_name"`
	Scores             []ComplianceScore     `json:"scores"`
	OverallRiskLevel   RiskLevel             `json:"overall_risk_level"`
	OverallScore       int                   `json:"overall_score"`
	CriticalViolations []ComplianceViolation `json:"critical_violations"`
	MediumViolations   []ComplianceViolation `json:"medium_violations"`
	LowViolations      []ComplianceViolation `json:"low_violations"`
	AutoTags           []string              `json:"auto_tags"`
	Jurisdiction       string                `json:"jurisdiction,omitempty"`
	AnalyzedAt         time.Time             `json:"analyzed_at"`
}

// TotalViolations returns the number of violations across all buckets.
func (a *ContractComplianceAnalysis) TotalViolations() int {
	return len(a.CriticalViolations) + len(a.MediumViolations) + len(a.LowViolations)
}

// AllViolations returns every violation across the three buckets in
// critical, medium, low order.
func (a *ContractComplianceAnalysis) AllViolations() []ComplianceViolation {
	out := make([]ComplianceViolation, 0, a.TotalViolations())
	out = append(out, a.CriticalViolations...)
	out = append(out, a.MediumViolations...)
	out = append(out, a.LowViolations...)
	return out
}

// RiskThresholds maps a 0-100 score onto a risk level. A score at or above
// Low is LOW risk, at or above Medium is MEDIUM, at or above High is HIGH,
// anything below High is CRITICAL.
type RiskThresholds struct {
	Low    float64 `json:"low" validate:"gte=0,lte=100"`
	Medium float64 `json:"medium" validate:"gte=0,lte=100"`
	High   float64 `json:"high" validate:"gte=0,lte=100"`
}

// DefaultRiskThresholds returns the standard threshold table.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{Low: 80, Medium: 60, High: 40}
}

// Classify maps a score onto its risk level.
func (t RiskThresholds) Classify(score float64) RiskLevel {
	switch {
	case score >= t.Low:
		return RiskLevelLow
	case score >= t.Medium:
		return RiskLevelMedium
	case score >= t.High:
		return RiskLevelHigh
	default:
		return RiskLevelCritical
	}
}

// ComplianceConfiguration carries per-client evaluation settings. The
// engine interprets only the thresholds, frameworks and tag cap; the
// notification settings are passed through opaquely for outer layers.
type ComplianceConfiguration struct {
	ClientID             string            `json:"client_id,omitempty"`
	RiskThresholds       RiskThresholds    `json:"risk_thresholds"`
	ActiveFrameworks     []Framework       `json:"active_frameworks"`
	Jurisdiction         string            `json:"jurisdiction,omitempty"`
	MaxAutoTags          int               `json:"max_auto_tags"`
	NotificationSettings map[string]string `json:"notification_settings,omitempty"`
}

// DefaultConfiguration returns a configuration with standard thresholds
// and tag cap.
func DefaultConfiguration() ComplianceConfiguration {
	return ComplianceConfiguration{
		RiskThresholds: DefaultRiskThresholds(),
		MaxAutoTags:    5,
	}
}

// Contract carries the contract metadata analytics needs to group
// analyses by type and client. Storage of contracts is external; this is
// the read-side shape handed into the analytics engine.
type Contract struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContractType string    `json:"contract_type"`
	ClientID     string    `json:"client_id"`
	Jurisdiction string    `json:"jurisdiction,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

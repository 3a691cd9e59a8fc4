package analytics

import (
	"time"

	"github.com/clauselens/clauselens/internal/compliance"
)

// TrendClassification is the per-client directional change in average
// risk over a period.
type TrendClassification string

const (
	TrendImproving     TrendClassification = "IMPROVING"
	TrendStable        TrendClassification = "STABLE"
	TrendDeteriorating TrendClassification = "DETERIORATING"
)

// Period is the reporting window analytics are computed over. A zero
// Start or End leaves that side of the window open.
type Period struct {
	Label string    `json:"label,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	if !p.Start.IsZero() && t.Before(p.Start) {
		return false
	}
	if !p.End.IsZero() && t.After(p.End) {
		return false
	}
	return true
}

// ContractTypeBreakdown summarizes the analyses of one contract type.
type ContractTypeBreakdown struct {
	Count            int                          `json:"count"`
	RiskDistribution map[compliance.RiskLevel]int `json:"risk_distribution"`
	AverageRiskScore float64                      `json:"average_risk_score"`
}

// ClientBreakdown summarizes the analyses of one client, including the
// trend classification across the period.
type ClientBreakdown struct {
	Count            int                          `json:"count"`
	RiskDistribution map[compliance.RiskLevel]int `json:"risk_distribution"`
	AverageRiskScore float64                      `json:"average_risk_score"`
	Trend            TrendClassification          `json:"trend"`
}

// MitigationStats measures how effectively detected violations are being
// resolved across the period.
type MitigationStats struct {
	TotalViolations    int      `json:"total_violations"`
	ResolvedViolations int      `json:"resolved_violations"`
	EffectivenessPct   float64  `json:"effectiveness_pct"`
	CommonRiskFactors  []string `json:"common_risk_factors"`
	RecommendedActions []string `json:"recommended_actions"`
}

// RiskAnalytics is the fleet-level roll-up of many contract analyses
// over a reporting period.
type RiskAnalytics struct {
	Period           Period                           `json:"period"`
	TotalContracts   int                              `json:"total_contracts"`
	RiskDistribution map[compliance.RiskLevel]int     `json:"risk_distribution"`
	ByContractType   map[string]ContractTypeBreakdown `json:"by_contract_type"`
	ByClient         map[string]ClientBreakdown       `json:"by_client"`
	Mitigation       MitigationStats                  `json:"mitigation"`
	GeneratedAt      time.Time                        `json:"generated_at"`
}

// RiskScore converts a risk level into the 25-100 numeric scale used for
// grouped averages (LOW=25 .. CRITICAL=100, higher is riskier).
func RiskScore(level compliance.RiskLevel) float64 {
	return float64(level.Rank()) * 25
}

// Package aggregate merges per-framework compliance scores into one
// contract-level analysis.
package aggregate

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
)

// Aggregator builds ContractComplianceAnalysis values from framework
// scores. Stateless; safe for concurrent use.
type Aggregator struct {
	logger *zap.SugaredLogger
}

// NewAggregator creates an analysis aggregator.
func NewAggregator(logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{logger: logger}
}

// Aggregate rolls the supplied framework scores into a contract-level
// analysis. The overall risk level is the worst among frameworks (a
// contract is only as compliant as its weakest framework); the overall
// score is the unweighted mean rounded to the nearest integer. With no
// scores the contract is clean: 100, LOW, empty buckets.
func (a *Aggregator) Aggregate(contractID, clientID, documentName string, scores []compliance.ComplianceScore, jurisdiction string, cfg compliance.ComplianceConfiguration) compliance.ContractComplianceAnalysis {
	analysis := compliance.ContractComplianceAnalysis{
		ContractID:         contractID,
		ClientID:           clientID,
		DocumentName:       documentName,
		Scores:             scores,
		OverallRiskLevel:   compliance.RiskLevelLow,
		OverallScore:       100,
		CriticalViolations: make([]compliance.ComplianceViolation, 0),
		MediumViolations:   make([]compliance.ComplianceViolation, 0),
		LowViolations:      make([]compliance.ComplianceViolation, 0),
		AutoTags:           make([]string, 0),
		Jurisdiction:       jurisdiction,
		AnalyzedAt:         time.Now(),
	}
	if len(scores) == 0 {
		return analysis
	}

	sum := 0.0
	for _, score := range scores {
		sum += score.OverallScore
		if score.RiskLevel.Worse(analysis.OverallRiskLevel) {
			analysis.OverallRiskLevel = score.RiskLevel
		}
		for _, v := range score.Violations {
			switch v.Severity {
			case compliance.RiskLevelCritical:
				analysis.CriticalViolations = append(analysis.CriticalViolations, v)
			case compliance.RiskLevelHigh, compliance.RiskLevelMedium:
				// Three-bucket contract: HIGH shares the medium bucket.
				analysis.MediumViolations = append(analysis.MediumViolations, v)
			default:
				analysis.LowViolations = append(analysis.LowViolations, v)
			}
		}
	}
	analysis.OverallScore = int(math.Round(sum / float64(len(scores))))
	analysis.AutoTags = autoTags(analysis.AllViolations(), cfg.MaxAutoTags)

	return analysis
}

// autoTags derives the distinct triggered rule categories, ordered by
// trigger frequency descending then category name ascending, capped at
// maxTags (default 5 when unset).
func autoTags(violations []compliance.ComplianceViolation, maxTags int) []string {
	if maxTags <= 0 {
		maxTags = 5
	}

	counts := make(map[string]int, len(violations))
	for _, v := range violations {
		if v.Category != "" {
			counts[v.Category]++
		}
	}

	tags := make([]string, 0, len(counts))
	for category := range counts {
		tags = append(tags, category)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	if len(tags) > maxTags {
		tags = tags[:maxTags]
	}
	return tags
}

// Package scoring converts a framework's violations into a 0-100
// compliance score with a derived risk level and recommendations.
package scoring

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
)

// severityFactor is the fixed weighting table applied per violation.
var severityFactor = map[compliance.RiskLevel]float64{
	compliance.RiskLevelLow:      1,
	compliance.RiskLevelMedium:   2,
	compliance.RiskLevelHigh:     3,
	compliance.RiskLevelCritical: 4,
}

// deductionScale converts weight x severity into score points. Treated as
// a tunable constant, not hard law.
const deductionScale = 10.0

// Scorer computes per-framework compliance scores. Stateless; safe for
// concurrent use.
type Scorer struct {
	logger *zap.SugaredLogger
}

// NewScorer creates a compliance scorer.
func NewScorer(logger *zap.SugaredLogger) *Scorer {
	return &Scorer{logger: logger}
}

// Score applies the deduction formula over the triggered violations:
// each violation deducts rule weight x severity factor x 10 points from a
// base of 100, floored at 0. The risk level follows the configured
// thresholds. Rules that no violation references deduct nothing.
func (s *Scorer) Score(framework compliance.Framework, violations []compliance.ComplianceViolation, ruleSet []compliance.ComplianceRule, cfg compliance.ComplianceConfiguration) compliance.ComplianceScore {
	weights := make(map[string]float64, len(ruleSet))
	for _, rule := range ruleSet {
		weights[rule.ID] = rule.Weight
	}

	total := 0.0
	for _, v := range violations {
		weight, ok := weights[v.RuleID]
		if !ok {
			// Violation from a rule outside the supplied set; weight it
			// conservatively at full strength.
			weight = 1
			s.logger.Warnw("violation references unknown rule", "rule_id", v.RuleID, "framework", framework)
		}
		total += weight * severityFactor[v.Severity] * deductionScale
	}

	score := 100 - total
	if score < 0 {
		score = 0
	}

	thresholds := cfg.RiskThresholds
	if thresholds == (compliance.RiskThresholds{}) {
		thresholds = compliance.DefaultRiskThresholds()
	}

	return compliance.ComplianceScore{
		Framework:       framework,
		OverallScore:    score,
		RiskLevel:       thresholds.Classify(score),
		Violations:      violations,
		Recommendations: recommendations(violations),
		Timestamp:       time.Now(),
	}
}

// recommendations collects the deduplicated suggested actions of
// unresolved violations, ordered by descending severity then ascending
// rule ID.
func recommendations(violations []compliance.ComplianceViolation) []string {
	open := make([]compliance.ComplianceViolation, 0, len(violations))
	for _, v := range violations {
		if !v.Resolved && v.SuggestedAction != "" {
			open = append(open, v)
		}
	}

	sort.SliceStable(open, func(i, j int) bool {
		if open[i].Severity.Rank() != open[j].Severity.Rank() {
			return open[i].Severity.Rank() > open[j].Severity.Rank()
		}
		return open[i].RuleID < open[j].RuleID
	})

	seen := make(map[string]bool, len(open))
	out := make([]string, 0, len(open))
	for _, v := range open {
		if !seen[v.SuggestedAction] {
			seen[v.SuggestedAction] = true
			out = append(out, v.SuggestedAction)
		}
	}
	return out
}

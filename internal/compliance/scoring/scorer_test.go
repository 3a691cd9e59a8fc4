package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauselens/clauselens/internal/compliance"
)

func scoredRule(id string, severity compliance.RiskLevel, weight float64) compliance.ComplianceRule {
	return compliance.ComplianceRule{
		ID:              id,
		Name:            "Rule " + id,
		Framework:       compliance.FrameworkGDPR,
		Category:        "data-protection",
		Keywords:        []string{"x"},
		Severity:        severity,
		Weight:          weight,
		SuggestedAction: "Remediate " + id,
		IsActive:        true,
	}
}

func violationOf(rule compliance.ComplianceRule) compliance.ComplianceViolation {
	return compliance.ComplianceViolation{
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		Severity:        rule.Severity,
		SuggestedAction: rule.SuggestedAction,
	}
}

func TestScoreSingleMediumViolation(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	r1 := scoredRule("r1", compliance.RiskLevelMedium, 0.3)
	score := s.Score(compliance.FrameworkGDPR,
		[]compliance.ComplianceViolation{violationOf(r1)},
		[]compliance.ComplianceRule{r1},
		compliance.DefaultConfiguration(),
	)

	// 0.3 x 2 x 10 = 6 deducted
	assert.InDelta(t, 94, score.OverallScore, 1e-9)
	assert.Equal(t, compliance.RiskLevelLow, score.RiskLevel)
}

func TestScoreTwoCriticalViolationsAdded(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	r1 := scoredRule("r1", compliance.RiskLevelMedium, 0.3)
	r2 := scoredRule("r2", compliance.RiskLevelCritical, 0.5)
	r3 := scoredRule("r3", compliance.RiskLevelCritical, 0.5)
	ruleSet := []compliance.ComplianceRule{r1, r2, r3}

	score := s.Score(compliance.FrameworkGDPR,
		[]compliance.ComplianceViolation{violationOf(r1), violationOf(r2), violationOf(r3)},
		ruleSet,
		compliance.DefaultConfiguration(),
	)

	// 6 + 20 + 20 = 46 deducted
	assert.InDelta(t, 54, score.OverallScore, 1e-9)
	assert.Equal(t, compliance.RiskLevelHigh, score.RiskLevel)
}

func TestScoreFlooredAtZero(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	ruleSet := make([]compliance.ComplianceRule, 0, 4)
	violations := make([]compliance.ComplianceViolation, 0, 4)
	for _, id := range []string{"r1", "r2", "r3", "r4"} {
		rule := scoredRule(id, compliance.RiskLevelCritical, 1.0)
		ruleSet = append(ruleSet, rule)
		violations = append(violations, violationOf(rule))
	}

	score := s.Score(compliance.FrameworkGDPR, violations, ruleSet, compliance.DefaultConfiguration())
	assert.Equal(t, 0.0, score.OverallScore)
	assert.Equal(t, compliance.RiskLevelCritical, score.RiskLevel)
	assert.GreaterOrEqual(t, score.OverallScore, 0.0)
	assert.LessOrEqual(t, score.OverallScore, 100.0)
}

func TestScoreNoViolationsIsClean(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	score := s.Score(compliance.FrameworkGDPR, nil, nil, compliance.DefaultConfiguration())
	assert.Equal(t, 100.0, score.OverallScore)
	assert.Equal(t, compliance.RiskLevelLow, score.RiskLevel)
	assert.Empty(t, score.Recommendations)
}

func TestScoreCustomThresholds(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	r1 := scoredRule("r1", compliance.RiskLevelMedium, 0.3)
	cfg := compliance.DefaultConfiguration()
	cfg.RiskThresholds = compliance.RiskThresholds{Low: 95, Medium: 90, High: 85}

	score := s.Score(compliance.FrameworkGDPR,
		[]compliance.ComplianceViolation{violationOf(r1)},
		[]compliance.ComplianceRule{r1},
		cfg,
	)

	// 94 is below the raised LOW bar.
	assert.Equal(t, compliance.RiskLevelMedium, score.RiskLevel)
}

func TestRecommendationsOrderingAndDedup(t *testing.T) {
	s := NewScorer(zaptest.NewLogger(t).Sugar())

	low := scoredRule("r1", compliance.RiskLevelLow, 0.1)
	critA := scoredRule("r2", compliance.RiskLevelCritical, 0.2)
	critB := scoredRule("r3", compliance.RiskLevelCritical, 0.2)
	critB.SuggestedAction = critA.SuggestedAction // duplicate action
	resolved := scoredRule("r4", compliance.RiskLevelHigh, 0.2)

	vResolved := violationOf(resolved)
	vResolved.Resolved = true

	score := s.Score(compliance.FrameworkGDPR,
		[]compliance.ComplianceViolation{violationOf(low), violationOf(critB), violationOf(critA), vResolved},
		[]compliance.ComplianceRule{low, critA, critB, resolved},
		compliance.DefaultConfiguration(),
	)

	// Critical first (r2 before r3 by rule ID, deduplicated), resolved
	// violations contribute nothing.
	require.Equal(t, []string{"Remediate r2", "Remediate r1"}, score.Recommendations)
}

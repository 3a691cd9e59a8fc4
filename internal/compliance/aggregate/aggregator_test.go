package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauselens/clauselens/internal/compliance"
)

func violation(severity compliance.RiskLevel, category string) compliance.ComplianceViolation {
	return compliance.ComplianceViolation{Severity: severity, Category: category}
}

func TestAggregateEmptyScoresIsClean(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t).Sugar())

	analysis := a.Aggregate("ct-1", "acme", "nda.pdf", nil, "EU", compliance.DefaultConfiguration())

	assert.Equal(t, 100, analysis.OverallScore)
	assert.Equal(t, compliance.RiskLevelLow, analysis.OverallRiskLevel)
	assert.Zero(t, analysis.TotalViolations())
	assert.Empty(t, analysis.AutoTags)
}

func TestAggregateWorstRiskMeanScore(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t).Sugar())

	scores := []compliance.ComplianceScore{
		{Framework: compliance.FrameworkGDPR, OverallScore: 94, RiskLevel: compliance.RiskLevelLow},
		{Framework: compliance.FrameworkHIPAA, OverallScore: 55, RiskLevel: compliance.RiskLevelHigh},
	}

	analysis := a.Aggregate("ct-1", "acme", "msa.pdf", scores, "", compliance.DefaultConfiguration())

	// Worst risk level wins, score is the rounded unweighted mean.
	assert.Equal(t, compliance.RiskLevelHigh, analysis.OverallRiskLevel)
	assert.Equal(t, 75, analysis.OverallScore) // (94+55)/2 = 74.5 rounds to 75
}

func TestAggregateBucketsPartitionAllViolations(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t).Sugar())

	scores := []compliance.ComplianceScore{
		{
			Framework: compliance.FrameworkGDPR,
			RiskLevel: compliance.RiskLevelCritical,
			Violations: []compliance.ComplianceViolation{
				violation(compliance.RiskLevelCritical, "data-protection"),
				violation(compliance.RiskLevelHigh, "transfer"),
				violation(compliance.RiskLevelLow, "notice"),
			},
		},
		{
			Framework: compliance.FrameworkHIPAA,
			RiskLevel: compliance.RiskLevelMedium,
			Violations: []compliance.ComplianceViolation{
				violation(compliance.RiskLevelMedium, "phi"),
			},
		},
	}

	analysis := a.Aggregate("ct-1", "acme", "baa.pdf", scores, "", compliance.DefaultConfiguration())

	// Three disjoint buckets: HIGH lands in the medium bucket.
	assert.Len(t, analysis.CriticalViolations, 1)
	assert.Len(t, analysis.MediumViolations, 2)
	assert.Len(t, analysis.LowViolations, 1)
	assert.Equal(t, 4, analysis.TotalViolations())
}

func TestAggregateAutoTagsFrequencyThenName(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t).Sugar())

	scores := []compliance.ComplianceScore{{
		Framework: compliance.FrameworkGDPR,
		RiskLevel: compliance.RiskLevelMedium,
		Violations: []compliance.ComplianceViolation{
			violation(compliance.RiskLevelMedium, "retention"),
			violation(compliance.RiskLevelMedium, "retention"),
			violation(compliance.RiskLevelMedium, "access"),
			violation(compliance.RiskLevelMedium, "breach"),
		},
	}}

	analysis := a.Aggregate("ct-1", "acme", "dpa.pdf", scores, "", compliance.DefaultConfiguration())
	require.Equal(t, []string{"retention", "access", "breach"}, analysis.AutoTags)
}

func TestAggregateAutoTagsCapped(t *testing.T) {
	a := NewAggregator(zaptest.NewLogger(t).Sugar())

	var violations []compliance.ComplianceViolation
	for _, category := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		violations = append(violations, violation(compliance.RiskLevelLow, category))
	}
	scores := []compliance.ComplianceScore{{
		Framework:  compliance.FrameworkGDPR,
		RiskLevel:  compliance.RiskLevelLow,
		Violations: violations,
	}}

	cfg := compliance.DefaultConfiguration()
	analysis := a.Aggregate("ct-1", "acme", "dpa.pdf", scores, "", cfg)
	assert.Len(t, analysis.AutoTags, 5)

	cfg.MaxAutoTags = 2
	analysis = a.Aggregate("ct-1", "acme", "dpa.pdf", scores, "", cfg)
	assert.Equal(t, []string{"a", "b"}, analysis.AutoTags)
}

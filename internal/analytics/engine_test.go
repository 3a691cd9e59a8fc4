package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauselens/clauselens/internal/compliance"
)

var baseTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func analysisAt(contractID, clientID string, risk compliance.RiskLevel, score int, offset time.Duration) compliance.ContractComplianceAnalysis {
	return compliance.ContractComplianceAnalysis{
		ContractID:       contractID,
		ClientID:         clientID,
		OverallRiskLevel: risk,
		OverallScore:     score,
		AnalyzedAt:       baseTime.Add(offset),
	}
}

func yearPeriod() Period {
	return Period{Start: baseTime.Add(-24 * time.Hour), End: baseTime.Add(365 * 24 * time.Hour)}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(Config{Shards: 4}, zaptest.NewLogger(t).Sugar())
}

func TestComputeRiskAnalyticsDistribution(t *testing.T) {
	e := newTestEngine(t)

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 95, time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelHigh, 50, 2*time.Hour),
		analysisAt("c3", "globex", compliance.RiskLevelLow, 90, 3*time.Hour),
	}
	contracts := []compliance.Contract{
		{ID: "c1", ClientID: "acme", ContractType: "NDA"},
		{ID: "c2", ClientID: "acme", ContractType: "MSA"},
		{ID: "c3", ClientID: "globex", ContractType: "NDA"},
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, contracts, yearPeriod())
	require.NoError(t, err)

	assert.Equal(t, 3, got.TotalContracts)
	assert.Equal(t, 2, got.RiskDistribution[compliance.RiskLevelLow])
	assert.Equal(t, 1, got.RiskDistribution[compliance.RiskLevelHigh])

	nda := got.ByContractType["NDA"]
	require.Equal(t, 2, nda.Count)
	assert.InDelta(t, 25, nda.AverageRiskScore, 1e-9) // both LOW

	msa := got.ByContractType["MSA"]
	require.Equal(t, 1, msa.Count)
	assert.InDelta(t, 75, msa.AverageRiskScore, 1e-9) // HIGH

	acme := got.ByClient["acme"]
	require.Equal(t, 2, acme.Count)
	assert.InDelta(t, 50, acme.AverageRiskScore, 1e-9) // (25+75)/2
}

func TestComputeRiskAnalyticsPeriodFilter(t *testing.T) {
	e := newTestEngine(t)

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 95, time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelLow, 95, -48*time.Hour), // before the window
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalContracts)
}

func TestTrendDeterioratingScenario(t *testing.T) {
	e := newTestEngine(t)

	// Compliance scores [80,80,40,40] over time: the second half is
	// worse by 40 points, well past the band.
	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 80, 1*time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelLow, 80, 2*time.Hour),
		analysisAt("c3", "acme", compliance.RiskLevelCritical, 40, 3*time.Hour),
		analysisAt("c4", "acme", compliance.RiskLevelCritical, 40, 4*time.Hour),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, TrendDeteriorating, got.ByClient["acme"].Trend)
}

func TestTrendImproving(t *testing.T) {
	e := newTestEngine(t)

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelHigh, 40, 1*time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelLow, 90, 2*time.Hour),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, TrendImproving, got.ByClient["acme"].Trend)
}

func TestTrendStableInsideBandAndForSingleAnalysis(t *testing.T) {
	e := newTestEngine(t)

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 90, 1*time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelLow, 93, 2*time.Hour),
		analysisAt("c3", "globex", compliance.RiskLevelLow, 90, 1*time.Hour),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, TrendStable, got.ByClient["acme"].Trend)
	assert.Equal(t, TrendStable, got.ByClient["globex"].Trend)
}

func TestTrendOddCountMedianInEarlierHalf(t *testing.T) {
	e := newTestEngine(t)

	// Halves split 2|1: first mean (90+90)/2=90, second 40, gap 50.
	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 90, 1*time.Hour),
		analysisAt("c2", "acme", compliance.RiskLevelLow, 90, 2*time.Hour),
		analysisAt("c3", "acme", compliance.RiskLevelCritical, 40, 3*time.Hour),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, TrendDeteriorating, got.ByClient["acme"].Trend)
}

func TestMitigationZeroViolationsIsZeroNotNaN(t *testing.T) {
	e := newTestEngine(t)

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 100, time.Hour),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.Mitigation.EffectivenessPct)
	assert.Zero(t, got.Mitigation.TotalViolations)
}

func TestMitigationEffectivenessAndTopFactors(t *testing.T) {
	e := newTestEngine(t)

	mkViolation := func(ruleID, name, action string, resolved bool) compliance.ComplianceViolation {
		return compliance.ComplianceViolation{
			RuleID:          ruleID,
			RuleName:        name,
			SuggestedAction: action,
			Severity:        compliance.RiskLevelMedium,
			Resolved:        resolved,
		}
	}

	a1 := analysisAt("c1", "acme", compliance.RiskLevelMedium, 70, time.Hour)
	a1.MediumViolations = []compliance.ComplianceViolation{
		mkViolation("r1", "Data transfer", "Add SCCs", true),
		mkViolation("r2", "Retention", "Define retention period", false),
	}
	a2 := analysisAt("c2", "acme", compliance.RiskLevelMedium, 70, 2*time.Hour)
	a2.MediumViolations = []compliance.ComplianceViolation{
		mkViolation("r1", "Data transfer", "Add SCCs", false),
		mkViolation("r1", "Data transfer", "Add SCCs", true),
	}

	got, err := e.ComputeRiskAnalytics(context.Background(), []compliance.ContractComplianceAnalysis{a1, a2}, nil, yearPeriod())
	require.NoError(t, err)

	assert.Equal(t, 4, got.Mitigation.TotalViolations)
	assert.Equal(t, 2, got.Mitigation.ResolvedViolations)
	assert.InDelta(t, 50, got.Mitigation.EffectivenessPct, 1e-9)

	// r1 triggered three times, r2 once.
	require.Equal(t, []string{"Data transfer", "Retention"}, got.Mitigation.CommonRiskFactors)
	require.Equal(t, []string{"Add SCCs", "Define retention period"}, got.Mitigation.RecommendedActions)
}

func TestParallelAggregationIsDeterministic(t *testing.T) {
	e := NewEngine(Config{Shards: 8}, zaptest.NewLogger(t).Sugar())

	var analyses []compliance.ContractComplianceAnalysis
	for i := 0; i < 100; i++ {
		risk := compliance.RiskLevelLow
		score := 90
		if i%3 == 0 {
			risk = compliance.RiskLevelHigh
			score = 50
		}
		analyses = append(analyses, analysisAt("c", "client", risk, score, time.Duration(i)*time.Minute))
	}

	first, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)
	second, err := e.ComputeRiskAnalytics(context.Background(), analyses, nil, yearPeriod())
	require.NoError(t, err)

	assert.Equal(t, first.RiskDistribution, second.RiskDistribution)
	assert.Equal(t, first.ByClient["client"].AverageRiskScore, second.ByClient["client"].AverageRiskScore)
	assert.Equal(t, first.ByClient["client"].Trend, second.ByClient["client"].Trend)
	assert.Equal(t, first.Mitigation, second.Mitigation)
}

func TestComputeRiskAnalyticsCanceledContext(t *testing.T) {
	e := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyses := []compliance.ContractComplianceAnalysis{
		analysisAt("c1", "acme", compliance.RiskLevelLow, 90, time.Hour),
	}
	_, err := e.ComputeRiskAnalytics(ctx, analyses, nil, yearPeriod())
	assert.Error(t, err)
}

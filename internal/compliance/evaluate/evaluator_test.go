package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/clauselens/clauselens/internal/compliance"
)

func keywordRule(id, keyword string) compliance.ComplianceRule {
	return compliance.ComplianceRule{
		ID:              id,
		Name:            "Rule " + id,
		Framework:       compliance.FrameworkGDPR,
		Category:        "data-protection",
		Keywords:        []string{keyword},
		Severity:        compliance.RiskLevelMedium,
		Weight:          0.3,
		SuggestedAction: "Add a safeguard for " + keyword,
		IsActive:        true,
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "personal data is shared", Normalize("  Personal\tDATA   is\n shared "))
	assert.Equal(t, "", Normalize("   \n\t "))
}

func TestEvaluateKeywordIsCaseFolded(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	violations := e.Evaluate("The Processor may transfer Personal Data abroad.", "c1", []compliance.ComplianceRule{
		keywordRule("r1", "personal data"),
	})

	require.Len(t, violations, 1)
	assert.Equal(t, "r1", violations[0].RuleID)
	assert.Equal(t, "c1", violations[0].ClauseID)
	assert.Equal(t, compliance.RiskLevelMedium, violations[0].Severity)
	assert.False(t, violations[0].Resolved)
}

func TestEvaluateOneViolationPerRule(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	rule := keywordRule("r1", "personal data")
	rule.Keywords = []string{"personal data", "data"}
	rule.Patterns = []string{`personal\s+data`}

	violations := e.Evaluate("personal data, more personal data, data everywhere", "c1", []compliance.ComplianceRule{rule})
	assert.Len(t, violations, 1)
}

func TestEvaluatePatternMatch(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	rule := keywordRule("r1", "never-present")
	rule.Patterns = []string{`retention\s+period\s+of\s+\d+\s+years`}

	violations := e.Evaluate("A retention period of 12 years applies.", "c1", []compliance.ComplianceRule{rule})
	assert.Len(t, violations, 1)
}

func TestEvaluateMalformedPatternIsFailSoft(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	broken := keywordRule("r1", "never-present")
	broken.Patterns = []string{`([unclosed`}
	valid := keywordRule("r2", "personal data")

	violations := e.Evaluate("personal data processing", "c1", []compliance.ComplianceRule{broken, valid})
	require.Len(t, violations, 1)
	assert.Equal(t, "r2", violations[0].RuleID)
}

func TestEvaluateDeterministicOrder(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	ruleSet := []compliance.ComplianceRule{
		keywordRule("r1", "personal data"),
		keywordRule("r2", "processing"),
		keywordRule("r3", "transfer"),
	}
	text := "transfer of personal data for processing"

	first := e.Evaluate(text, "c1", ruleSet)
	second := e.Evaluate(text, "c1", ruleSet)

	require.Len(t, first, 3)
	require.Len(t, second, 3)
	for i := range first {
		assert.Equal(t, first[i].RuleID, second[i].RuleID)
	}
	assert.Equal(t, "r1", first[0].RuleID)
	assert.Equal(t, "r2", first[1].RuleID)
	assert.Equal(t, "r3", first[2].RuleID)
}

func TestEvaluateEmptyTextYieldsNoViolations(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	assert.Empty(t, e.Evaluate("", "c1", []compliance.ComplianceRule{keywordRule("r1", "personal data")}))
	assert.Empty(t, e.Evaluate("   \n\t  ", "c1", []compliance.ComplianceRule{keywordRule("r1", "personal data")}))
}

func TestEvaluateCopiesRuleFields(t *testing.T) {
	e := NewEvaluator(zaptest.NewLogger(t).Sugar())

	rule := keywordRule("r1", "personal data")
	rule.Description = "Personal data handling"
	rule.Explanation = "The clause moves personal data without safeguards"

	violations := e.Evaluate("personal data", "c1", []compliance.ComplianceRule{rule})
	require.Len(t, violations, 1)
	v := violations[0]
	assert.Equal(t, rule.Name, v.RuleName)
	assert.Equal(t, rule.Category, v.Category)
	assert.Equal(t, rule.Description, v.Description)
	assert.Equal(t, rule.Explanation, v.Explanation)
	assert.Equal(t, rule.SuggestedAction, v.SuggestedAction)
	assert.NotZero(t, v.ID)
	assert.False(t, v.DetectedAt.IsZero())
}

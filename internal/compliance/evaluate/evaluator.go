// Package evaluate matches normalized clause text against compliance
// rules and emits violation candidates.
package evaluate

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/pkg/metrics"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize lowercases the text and collapses runs of whitespace so that
// keyword and pattern matching is insensitive to casing and layout.
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(text), " "))
}

// Evaluator matches clause text against a resolved rule set. It is
// stateless apart from its logger; evaluations may run fully in parallel.
type Evaluator struct {
	logger *zap.SugaredLogger
}

// NewEvaluator creates a clause evaluator.
func NewEvaluator(logger *zap.SugaredLogger) *Evaluator {
	return &Evaluator{logger: logger}
}

// Evaluate returns one violation per triggered rule, ordered by rule ID
// ascending. A rule triggers when any keyword occurs in the normalized
// text or any pattern matches it. Rules whose patterns fail to compile
// are skipped without aborting the evaluation. Blank text yields no
// violations.
func (e *Evaluator) Evaluate(text, clauseID string, ruleSet []compliance.ComplianceRule) []compliance.ComplianceViolation {
	normalized := Normalize(text)
	if normalized == "" {
		return nil
	}

	violations := make([]compliance.ComplianceViolation, 0)
	for _, rule := range ruleSet { // rule set arrives ordered by ID
		if e.triggers(normalized, rule) {
			violations = append(violations, newViolation(rule, clauseID))
			metrics.ViolationsDetected.WithLabelValues(string(rule.Severity)).Inc()
		}
	}
	return violations
}

// triggers reports whether the rule matches the normalized text. Keyword
// and pattern hits are OR'd; the first hit wins so a rule never yields
// duplicate violations.
func (e *Evaluator) triggers(normalized string, rule compliance.ComplianceRule) bool {
	for _, keyword := range rule.Keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(normalized, Normalize(keyword)) {
			return true
		}
	}

	for _, pattern := range rule.Patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			metrics.RuleCompileFailures.Inc()
			e.logger.Warnw("skipping rule with malformed pattern",
				"rule_id", rule.ID, "pattern", pattern, "error", err)
			continue
		}
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}

func newViolation(rule compliance.ComplianceRule, clauseID string) compliance.ComplianceViolation {
	return compliance.ComplianceViolation{
		ID:              uuid.New(),
		RuleID:          rule.ID,
		RuleName:        rule.Name,
		ClauseID:        clauseID,
		Category:        rule.Category,
		Severity:        rule.Severity,
		Description:     rule.Description,
		Explanation:     rule.Explanation,
		SuggestedAction: rule.SuggestedAction,
		DetectedAt:      time.Now(),
	}
}

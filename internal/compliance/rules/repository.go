// Package rules holds the versioned, immutable compliance rule snapshots
// the evaluator reads from.
package rules

import (
	"regexp"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/pkg/errors"
)

// ErrConfigurationMissing is returned when no global rule set exists for a
// requested framework at all. Zero matched rules is not this error.
var ErrConfigurationMissing = errors.NewWithKind(errors.KindConfigurationMissing, "no rule set configured for framework")

// snapshot is an immutable view of the published rules, grouped by
// framework. Readers hold the snapshot they started with; updates swap in
// a fresh one.
type snapshot struct {
	version     uint64
	byFramework map[compliance.Framework][]compliance.ComplianceRule
	publishedAt time.Time
}

// Repository serves active compliance rules scoped by framework,
// jurisdiction and client. Reads are lock-free against the current
// snapshot; updates rebuild and atomically publish a new snapshot.
type Repository struct {
	logger   *zap.SugaredLogger
	validate *validator.Validate

	mu      sync.Mutex // serializes writers only
	current atomic.Pointer[snapshot]
}

// NewRepository creates an empty rule repository.
func NewRepository(logger *zap.SugaredLogger) *Repository {
	r := &Repository{
		logger:   logger,
		validate: validator.New(),
	}
	r.current.Store(&snapshot{
		byFramework: make(map[compliance.Framework][]compliance.ComplianceRule),
		publishedAt: time.Now(),
	})
	return r
}

// Update validates the full rule set and publishes it as a new immutable
// snapshot, replacing the previous one. In-flight readers keep the
// snapshot they loaded.
func (r *Repository) Update(ruleSet []compliance.ComplianceRule) error {
	byFramework := make(map[compliance.Framework][]compliance.ComplianceRule, 4)
	for _, rule := range ruleSet {
		if err := r.validate.Struct(rule); err != nil {
			return errors.Newf(errors.KindValidation, "rule %q failed validation", rule.ID).Cause(err)
		}
		if len(rule.Keywords) == 0 && len(rule.Patterns) == 0 {
			return errors.Newf(errors.KindValidation, "rule %q has neither keywords nor patterns", rule.ID)
		}
		for _, p := range rule.Patterns {
			if _, err := regexp.Compile(p); err != nil {
				// Accepted but flagged: the evaluator skips it fail-soft.
				r.logger.Warnw("rule pattern does not compile, rule will be skipped at evaluation",
					"rule_id", rule.ID, "pattern", p, "error", err)
			}
		}
		byFramework[rule.Framework] = append(byFramework[rule.Framework], rule)
	}

	for fw := range byFramework {
		sort.Slice(byFramework[fw], func(i, j int) bool {
			return byFramework[fw][i].ID < byFramework[fw][j].ID
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.current.Load()
	next := &snapshot{
		version:     prev.version + 1,
		byFramework: byFramework,
		publishedAt: time.Now(),
	}
	r.current.Store(next)

	r.logger.Infow("rule snapshot published",
		"version", next.version,
		"frameworks", len(byFramework),
		"rules", len(ruleSet),
	)
	return nil
}

// Version returns the version of the currently published snapshot.
func (r *Repository) Version() uint64 {
	return r.current.Load().version
}

// ActiveRules resolves the rule set for one framework, jurisdiction and
// client. Global rules apply first; a client-scoped rule replaces all
// global rules sharing its category. The result is ordered by rule ID
// ascending. Returns ErrConfigurationMissing only when the framework has
// no rule set at all.
func (r *Repository) ActiveRules(framework compliance.Framework, jurisdiction, clientID string) ([]compliance.ComplianceRule, error) {
	snap := r.current.Load()

	all, ok := snap.byFramework[framework]
	if !ok {
		return nil, errors.Newf(errors.KindConfigurationMissing, "no rule set configured for framework %s", framework)
	}

	var global, scoped []compliance.ComplianceRule
	for _, rule := range all {
		if !rule.IsActive {
			continue
		}
		if rule.Jurisdiction != "" && jurisdiction != "" && rule.Jurisdiction != jurisdiction {
			continue
		}
		switch {
		case rule.ClientID == "":
			global = append(global, rule)
		case clientID != "" && rule.ClientID == clientID:
			scoped = append(scoped, rule)
		}
	}

	// Client overrides replace, not merge: drop globals whose category a
	// client rule claims.
	overridden := make(map[string]bool, len(scoped))
	for _, rule := range scoped {
		overridden[rule.Category] = true
	}

	resolved := make([]compliance.ComplianceRule, 0, len(global)+len(scoped))
	for _, rule := range global {
		if !overridden[rule.Category] {
			resolved = append(resolved, rule)
		}
	}
	resolved = append(resolved, scoped...)

	sort.Slice(resolved, func(i, j int) bool { return resolved[i].ID < resolved[j].ID })
	return resolved, nil
}

// Frameworks lists the frameworks that have a published rule set.
func (r *Repository) Frameworks() []compliance.Framework {
	snap := r.current.Load()
	out := make([]compliance.Framework, 0, len(snap.byFramework))
	for fw := range snap.byFramework {
		out = append(out, fw)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

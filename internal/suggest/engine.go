package suggest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/compliance/evaluate"
	"github.com/clauselens/clauselens/internal/compliance/rules"
	"github.com/clauselens/clauselens/pkg/errors"
	"github.com/clauselens/clauselens/pkg/metrics"
)

// ConfidenceWeights combines the three confidence components. Weights
// are renormalized when the provider reports no confidence of its own.
type ConfidenceWeights struct {
	RulesAddressed float64 `json:"rules_addressed"`
	Similarity     float64 `json:"similarity"`
	Provider       float64 `json:"provider"`
}

// Config tunes suggestion generation.
type Config struct {
	MinConfidence      float64           `json:"min_confidence"`
	MaxSuggestions     int               `json:"max_suggestions"`
	ProviderTimeout    time.Duration     `json:"provider_timeout"`
	FallbackConfidence float64           `json:"fallback_confidence"`
	Weights            ConfidenceWeights `json:"weights"`
}

// DefaultConfig returns the standard suggestion configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence:      0.6,
		MaxSuggestions:     5,
		ProviderTimeout:    10 * time.Second,
		FallbackConfidence: 0.6,
		Weights:            ConfidenceWeights{RulesAddressed: 0.4, Similarity: 0.3, Provider: 0.3},
	}
}

// Engine generates ranked clause suggestions. The only suspension points
// are the provider calls; everything else is deterministic over the
// inputs.
type Engine struct {
	logger    *zap.SugaredLogger
	cfg       Config
	repo      *rules.Repository
	evaluator *evaluate.Evaluator
	provider  RewriteProvider
	searcher  SimilaritySearcher
}

// NewEngine wires the suggestion engine. provider and searcher are the
// injected external capabilities; searcher may be nil when template
// search is not deployed.
func NewEngine(cfg Config, repo *rules.Repository, evaluator *evaluate.Evaluator, provider RewriteProvider, searcher SimilaritySearcher, logger *zap.SugaredLogger) *Engine {
	def := DefaultConfig()
	if cfg.MinConfidence <= 0 {
		cfg.MinConfidence = def.MinConfidence
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = def.MaxSuggestions
	}
	if cfg.ProviderTimeout <= 0 {
		cfg.ProviderTimeout = def.ProviderTimeout
	}
	if cfg.FallbackConfidence <= 0 {
		cfg.FallbackConfidence = def.FallbackConfidence
	}
	if cfg.Weights == (ConfidenceWeights{}) {
		cfg.Weights = def.Weights
	}
	if provider != nil {
		provider = newBreakerProvider(provider, cfg.ProviderTimeout, logger)
	}
	return &Engine{
		logger:    logger,
		cfg:       cfg,
		repo:      repo,
		evaluator: evaluator,
		provider:  provider,
		searcher:  searcher,
	}
}

// GenerateSuggestions produces up to MaxSuggestions alternative
// phrasings of the original clause, one candidate per requested
// improvement category, filtered to the confidence threshold and sorted
// by confidence descending with category priority breaking ties. A
// provider failure or timeout skips that category and substitutes a
// rule-based fallback when a triggered rule carries recommended
// language.
func (e *Engine) GenerateSuggestions(ctx context.Context, req SuggestionRequest) ([]ClauseSuggestion, error) {
	start := time.Now()
	defer func() { metrics.SuggestionLatency.Observe(time.Since(start).Seconds()) }()

	applicable := e.resolveRules(req)
	byID := make(map[string]compliance.ComplianceRule, len(applicable))
	for _, rule := range applicable {
		byID[rule.ID] = rule
	}
	triggered := e.evaluator.Evaluate(req.OriginalClause, req.ClauseID, applicable)

	maxSuggestions := req.MaxSuggestions
	if maxSuggestions <= 0 {
		maxSuggestions = e.cfg.MaxSuggestions
	}

	var suggestions []ClauseSuggestion
	for _, category := range orderImprovements(req.Improvements) {
		suggestion, ok := e.suggestForCategory(ctx, req, category, triggered, byID)
		if ok {
			suggestions = append(suggestions, suggestion)
		}
	}

	filtered := suggestions[:0]
	for _, s := range suggestions {
		if s.Confidence >= e.cfg.MinConfidence {
			filtered = append(filtered, s)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Confidence != filtered[j].Confidence {
			return filtered[i].Confidence > filtered[j].Confidence
		}
		return filtered[i].Type.Priority() < filtered[j].Type.Priority()
	})
	if len(filtered) > maxSuggestions {
		filtered = filtered[:maxSuggestions]
	}
	return filtered, nil
}

// suggestForCategory obtains one candidate for the category: the
// provider's rewrite when it answers, otherwise the rule-based fallback.
func (e *Engine) suggestForCategory(ctx context.Context, req SuggestionRequest, category SuggestionType, triggered []compliance.ComplianceViolation, byID map[string]compliance.ComplianceRule) (ClauseSuggestion, bool) {
	if e.provider != nil {
		result, err := e.provider.Rewrite(ctx, RewriteRequest{
			OriginalClause: req.OriginalClause,
			Improvement:    category,
			Jurisdiction:   req.Jurisdiction,
		})
		if err == nil && result != nil && strings.TrimSpace(result.SuggestedText) != "" {
			return ClauseSuggestion{
				ID:                     uuid.New(),
				OriginalClause:         req.OriginalClause,
				SuggestedClause:        result.SuggestedText,
				Type:                   category,
				Confidence:             e.confidence(req.OriginalClause, result.SuggestedText, result.Confidence, triggered, byID, req.ClauseID),
				Benefits:               result.Benefits,
				Risks:                  result.Risks,
				ComplianceImprovements: result.ComplianceNotes,
				Source:                 SourceAI,
				Status:                 StatusPending,
				CreatedAt:              time.Now(),
			}, true
		}
		if err != nil {
			e.logger.Warnw("rewrite provider unavailable for category, using fallback",
				"category", category, "error", err)
		}
	}
	return e.fallbackSuggestion(req, category, triggered)
}

// fallbackSuggestion builds a deterministic rule-based suggestion by
// appending the recommended language of the highest-severity triggered
// rule. Available only when some triggered rule carries a suggested
// action.
func (e *Engine) fallbackSuggestion(req SuggestionRequest, category SuggestionType, triggered []compliance.ComplianceViolation) (ClauseSuggestion, bool) {
	var pick *compliance.ComplianceViolation
	for i := range triggered {
		v := &triggered[i]
		if v.SuggestedAction == "" {
			continue
		}
		if pick == nil || v.Severity.Worse(pick.Severity) {
			pick = v
		}
	}
	if pick == nil {
		return ClauseSuggestion{}, false
	}

	return ClauseSuggestion{
		ID:              uuid.New(),
		OriginalClause:  req.OriginalClause,
		SuggestedClause: strings.TrimSpace(req.OriginalClause) + "\n\n" + pick.SuggestedAction,
		Type:            category,
		Confidence:      e.cfg.FallbackConfidence,
		Benefits:        []string{"Applies the recommended language of " + pick.RuleName},
		Risks:           []string{"Generic language may need tailoring to the contract"},
		ComplianceImprovements: []string{
			pick.RuleName + " (" + string(pick.Severity) + ")",
		},
		Source:    SourceBestPractice,
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}, true
}

// resolveRules collects the active rules of every requested framework.
// A framework with no configured rule set is skipped; the other
// frameworks still contribute.
func (e *Engine) resolveRules(req SuggestionRequest) []compliance.ComplianceRule {
	var out []compliance.ComplianceRule
	for _, fw := range req.Frameworks {
		ruleSet, err := e.repo.ActiveRules(fw, req.Jurisdiction, req.ClientID)
		if err != nil {
			e.logger.Warnw("skipping framework during suggestion", "framework", fw, "error", err)
			continue
		}
		out = append(out, ruleSet...)
	}
	return out
}

// orderImprovements deduplicates the requested categories and sorts them
// into the fixed priority order. An empty request defaults to a general
// improvement pass.
func orderImprovements(requested []SuggestionType) []SuggestionType {
	if len(requested) == 0 {
		return []SuggestionType{SuggestionImprovement}
	}
	seen := make(map[SuggestionType]bool, len(requested))
	out := make([]SuggestionType, 0, len(requested))
	for _, t := range requested {
		if _, known := categoryPriority[t]; !known {
			continue
		}
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority() < out[j].Priority() })
	return out
}

// confidence combines the rules-addressed ratio, the textual similarity
// to the original and the provider-reported confidence into one clamped
// [0,1] score.
func (e *Engine) confidence(original, suggested string, providerConfidence float64, triggered []compliance.ComplianceViolation, byID map[string]compliance.ComplianceRule, clauseID string) float64 {
	rulesComponent := e.rulesAddressed(suggested, triggered, byID, clauseID)
	simComponent := similarity(original, suggested)

	w := e.cfg.Weights
	weighted := w.RulesAddressed*rulesComponent + w.Similarity*simComponent
	totalWeight := w.RulesAddressed + w.Similarity
	if providerConfidence > 0 {
		weighted += w.Provider * clamp01(providerConfidence)
		totalWeight += w.Provider
	}
	if totalWeight == 0 {
		return 0
	}
	return clamp01(weighted / totalWeight)
}

// rulesAddressed is the fraction of originally triggered rules that no
// longer trigger on the rewritten clause. A clean original counts as
// fully addressed.
func (e *Engine) rulesAddressed(suggested string, triggered []compliance.ComplianceViolation, byID map[string]compliance.ComplianceRule, clauseID string) float64 {
	if len(triggered) == 0 {
		return 1
	}
	subset := make([]compliance.ComplianceRule, 0, len(triggered))
	for _, v := range triggered {
		if rule, ok := byID[v.RuleID]; ok {
			subset = append(subset, rule)
		}
	}
	still := e.evaluator.Evaluate(suggested, clauseID, subset)
	addressed := len(triggered) - len(still)
	if addressed < 0 {
		addressed = 0
	}
	return float64(addressed) / float64(len(triggered))
}

// similarity is a normalized levenshtein ratio between the normalized
// clause texts; 1 means identical, 0 means entirely rewritten. It
// penalizes over-rewriting: a rewrite that discards the whole clause
// scores low even when the provider is confident.
func similarity(original, suggested string) float64 {
	a := evaluate.Normalize(original)
	b := evaluate.Normalize(suggested)
	if a == "" && b == "" {
		return 0
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FindTemplateMatches runs the read-only template similarity matching
// against candidates fetched from the injected similarity searcher.
func (e *Engine) FindTemplateMatches(ctx context.Context, clause string, limit int) ([]ClauseTemplateMatch, error) {
	if e.searcher == nil {
		return nil, errors.NewWithKind(errors.KindProviderFailure, "no similarity searcher configured")
	}
	candidates, err := e.searcher.Search(ctx, clause, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NewWithKind(errors.KindProviderTimeout, "similarity search timed out").Cause(err)
		}
		return nil, errors.NewWithKind(errors.KindProviderFailure, "similarity search failed").Cause(err)
	}
	return MatchTemplates(clause, candidates, limit), nil
}

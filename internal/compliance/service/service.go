// Package service orchestrates the per-contract compliance pipeline:
// rule resolution, clause evaluation, per-framework scoring and the
// contract-level roll-up.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/compliance/aggregate"
	"github.com/clauselens/clauselens/internal/compliance/evaluate"
	"github.com/clauselens/clauselens/internal/compliance/rules"
	"github.com/clauselens/clauselens/internal/compliance/scoring"
	"github.com/clauselens/clauselens/pkg/errors"
	"github.com/clauselens/clauselens/pkg/metrics"
)

// AnalyzeRequest asks for a full compliance analysis of one contract
// document.
type AnalyzeRequest struct {
	ContractID    string                             `json:"contract_id"`
	ClientID      string                             `json:"client_id,omitempty"`
	DocumentName  string                             `json:"document_name"`
	Text          string                             `json:"text"`
	Frameworks    []compliance.Framework             `json:"frameworks,omitempty"`
	Jurisdiction  string                             `json:"jurisdiction,omitempty"`
	Configuration compliance.ComplianceConfiguration `json:"configuration,omitempty"`
}

// Service runs contract analyses against the shared rule repository.
// All pipeline stages are stateless, so analyses may run fully in
// parallel against whichever snapshot each one loads.
type Service struct {
	logger     *zap.SugaredLogger
	repo       *rules.Repository
	evaluator  *evaluate.Evaluator
	scorer     *scoring.Scorer
	aggregator *aggregate.Aggregator
	defaults   compliance.ComplianceConfiguration
}

// NewService wires the compliance pipeline around one rule repository.
// defaults apply to requests that carry no configuration of their own.
func NewService(repo *rules.Repository, defaults compliance.ComplianceConfiguration, logger *zap.SugaredLogger) *Service {
	if defaults.MaxAutoTags == 0 && defaults.RiskThresholds == (compliance.RiskThresholds{}) {
		defaults = compliance.DefaultConfiguration()
	}
	return &Service{
		logger:     logger,
		repo:       repo,
		evaluator:  evaluate.NewEvaluator(logger),
		scorer:     scoring.NewScorer(logger),
		aggregator: aggregate.NewAggregator(logger),
		defaults:   defaults,
	}
}

// Repository exposes the underlying rule repository for snapshot
// updates.
func (s *Service) Repository() *rules.Repository {
	return s.repo
}

// AnalyzeContract evaluates the contract text against every requested
// framework and aggregates the results. A framework with no configured
// rule set is skipped and reported in the returned error while the other
// frameworks proceed; the analysis is always returned. Blank text is not
// an error and yields a clean analysis.
func (s *Service) AnalyzeContract(ctx context.Context, req AnalyzeRequest) (*compliance.ContractComplianceAnalysis, error) {
	cfg := req.Configuration
	if cfg.MaxAutoTags == 0 && cfg.RiskThresholds == (compliance.RiskThresholds{}) {
		cfg = s.defaults
	}

	frameworks := req.Frameworks
	if len(frameworks) == 0 {
		frameworks = cfg.ActiveFrameworks
	}
	if len(frameworks) == 0 {
		frameworks = s.repo.Frameworks()
	}

	var (
		scores     []compliance.ComplianceScore
		missingErr error
	)
	for _, fw := range frameworks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ruleSet, err := s.repo.ActiveRules(fw, req.Jurisdiction, req.ClientID)
		if err != nil {
			if errors.IsKind(err, errors.KindConfigurationMissing) {
				s.logger.Warnw("framework has no rule set, skipping", "framework", fw, "contract_id", req.ContractID)
				missingErr = errors.Join(missingErr, err)
				continue
			}
			return nil, err
		}

		metrics.EvaluationsProcessed.WithLabelValues(string(fw)).Inc()
		violations := s.evaluator.Evaluate(req.Text, req.ContractID, ruleSet)
		scores = append(scores, s.scorer.Score(fw, violations, ruleSet, cfg))
	}

	analysis := s.aggregator.Aggregate(req.ContractID, req.ClientID, req.DocumentName, scores, req.Jurisdiction, cfg)

	s.logger.Infow("contract analyzed",
		"contract_id", req.ContractID,
		"frameworks", len(scores),
		"violations", analysis.TotalViolations(),
		"overall_score", analysis.OverallScore,
		"risk_level", analysis.OverallRiskLevel,
	)
	return &analysis, missingErr
}

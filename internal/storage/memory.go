package storage

import (
	"context"
	"sync"

	"github.com/clauselens/clauselens/internal/analytics"
	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/suggest"
)

// MemoryStore is an in-memory AnalysisStore and TemplateSource.
type MemoryStore struct {
	mu        sync.RWMutex
	analyses  []compliance.ContractComplianceAnalysis
	contracts map[string]compliance.Contract
	templates []suggest.ClauseTemplate
}

var (
	_ AnalysisStore  = (*MemoryStore)(nil)
	_ TemplateSource = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contracts: make(map[string]compliance.Contract)}
}

// SaveAnalysis appends the analysis to the window.
func (m *MemoryStore) SaveAnalysis(ctx context.Context, analysis compliance.ContractComplianceAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses = append(m.analyses, analysis)
	return nil
}

// ListAnalyses returns the analyses inside the period, in insertion
// order.
func (m *MemoryStore) ListAnalyses(ctx context.Context, period analytics.Period) ([]compliance.ContractComplianceAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]compliance.ContractComplianceAnalysis, 0, len(m.analyses))
	for _, a := range m.analyses {
		if period.Contains(a.AnalyzedAt) {
			out = append(out, a)
		}
	}
	return out, nil
}

// SaveContract upserts contract metadata by ID.
func (m *MemoryStore) SaveContract(ctx context.Context, contract compliance.Contract) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contracts[contract.ID] = contract
	return nil
}

// ListContracts returns all stored contract metadata.
func (m *MemoryStore) ListContracts(ctx context.Context) ([]compliance.Contract, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]compliance.Contract, 0, len(m.contracts))
	for _, c := range m.contracts {
		out = append(out, c)
	}
	return out, nil
}

// SetTemplates replaces the template library.
func (m *MemoryStore) SetTemplates(templates []suggest.ClauseTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates = templates
}

// ListTemplates returns the template library.
func (m *MemoryStore) ListTemplates(ctx context.Context) ([]suggest.ClauseTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]suggest.ClauseTemplate, len(m.templates))
	copy(out, m.templates)
	return out, nil
}

// TemplateSearcher adapts a TemplateSource into the engine's
// SimilaritySearcher capability using the token-overlap matcher for
// ranking.
type TemplateSearcher struct {
	source TemplateSource
}

// NewTemplateSearcher wraps a template source.
func NewTemplateSearcher(source TemplateSource) *TemplateSearcher {
	return &TemplateSearcher{source: source}
}

var _ suggest.SimilaritySearcher = (*TemplateSearcher)(nil)

// Search returns the stored templates most similar to the clause.
func (s *TemplateSearcher) Search(ctx context.Context, clause string, limit int) ([]suggest.ClauseTemplate, error) {
	templates, err := s.source.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	matches := suggest.MatchTemplates(clause, templates, limit)
	byID := make(map[string]suggest.ClauseTemplate, len(templates))
	for _, t := range templates {
		byID[t.ID] = t
	}
	out := make([]suggest.ClauseTemplate, 0, len(matches))
	for _, m := range matches {
		out = append(out, byID[m.TemplateID])
	}
	return out, nil
}

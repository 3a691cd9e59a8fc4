// Package storage defines the persistence boundary of the engine.
// Durable storage is an external collaborator; the engine only depends
// on these interfaces, and the in-memory implementations back the server
// and the tests.
package storage

import (
	"context"

	"github.com/clauselens/clauselens/internal/analytics"
	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/internal/suggest"
)

// AnalysisStore keeps completed contract analyses and the contract
// metadata analytics groups by.
type AnalysisStore interface {
	SaveAnalysis(ctx context.Context, analysis compliance.ContractComplianceAnalysis) error
	ListAnalyses(ctx context.Context, period analytics.Period) ([]compliance.ContractComplianceAnalysis, error)
	SaveContract(ctx context.Context, contract compliance.Contract) error
	ListContracts(ctx context.Context) ([]compliance.Contract, error)
}

// TemplateSource serves the clause templates the matcher compares
// against. Template CRUD, versioning and approval live outside the
// engine.
type TemplateSource interface {
	ListTemplates(ctx context.Context) ([]suggest.ClauseTemplate, error)
}

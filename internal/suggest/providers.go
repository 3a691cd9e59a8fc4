package suggest

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/clauselens/clauselens/pkg/errors"
	"github.com/clauselens/clauselens/pkg/metrics"
)

// RewriteRequest is what the external text-rewrite provider receives for
// one improvement category.
type RewriteRequest struct {
	OriginalClause string
	Improvement    SuggestionType
	Jurisdiction   string
}

// RewriteResult is the provider's candidate rewrite. Confidence is
// optional; zero means the provider did not report one.
type RewriteResult struct {
	SuggestedText   string
	Confidence      float64
	Benefits        []string
	Risks           []string
	ComplianceNotes []string
}

// RewriteProvider is the pluggable text-rewrite capability. The engine
// never depends on how the text is produced; implementations may call a
// language model, a template service or anything else.
type RewriteProvider interface {
	Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResult, error)
}

// SimilaritySearcher is the pluggable similarity-search capability over
// stored templates.
type SimilaritySearcher interface {
	Search(ctx context.Context, clause string, limit int) ([]ClauseTemplate, error)
}

// breakerProvider wraps a RewriteProvider with a circuit breaker and a
// per-call timeout so a degraded provider cannot stall suggestion
// generation.
type breakerProvider struct {
	inner   RewriteProvider
	breaker *gobreaker.CircuitBreaker[*RewriteResult]
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// newBreakerProvider wires the provider behind a circuit breaker. The
// breaker opens after consecutive failures and recovers on its own; while
// open, calls fail fast and the engine falls back to rule-based
// suggestions.
func newBreakerProvider(inner RewriteProvider, timeout time.Duration, logger *zap.SugaredLogger) *breakerProvider {
	settings := gobreaker.Settings{
		Name:        "rewrite-provider",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("rewrite provider breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &breakerProvider{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[*RewriteResult](settings),
		timeout: timeout,
		logger:  logger,
	}
}

// Rewrite calls the wrapped provider under the breaker and timeout,
// normalizing failures into the engine's error taxonomy.
func (b *breakerProvider) Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResult, error) {
	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	result, err := b.breaker.Execute(func() (*RewriteResult, error) {
		return b.inner.Rewrite(callCtx, req)
	})
	if err != nil {
		metrics.ProviderCalls.WithLabelValues("failure").Inc()
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewWithKind(errors.KindProviderTimeout, "rewrite provider timed out").Cause(err)
		}
		return nil, errors.NewWithKind(errors.KindProviderFailure, "rewrite provider failed").Cause(err)
	}
	metrics.ProviderCalls.WithLabelValues("success").Inc()
	return result, nil
}

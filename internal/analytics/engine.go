// Package analytics rolls contract-level compliance analyses up into
// fleet-wide risk analytics: distributions, grouped breakdowns, trend
// classification and mitigation effectiveness.
package analytics

import (
	"context"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clauselens/clauselens/internal/compliance"
	"github.com/clauselens/clauselens/pkg/metrics"
)

// Config tunes the analytics computation.
type Config struct {
	// TrendBand is the score-point band around zero change inside which a
	// client's trend is STABLE.
	TrendBand float64 `json:"trend_band"`
	// TopRiskFactors is how many most-triggered rules to report.
	TopRiskFactors int `json:"top_risk_factors"`
	// Shards bounds the number of parallel partial aggregations.
	Shards int `json:"shards"`
}

// DefaultConfig returns the standard analytics configuration.
func DefaultConfig() Config {
	return Config{TrendBand: 5, TopRiskFactors: 5, Shards: runtime.NumCPU()}
}

// Engine computes fleet-level risk analytics over batches of analyses.
// Stateless apart from configuration; safe for concurrent use.
type Engine struct {
	logger *zap.SugaredLogger
	cfg    Config
}

// NewEngine creates an analytics engine. Zero config fields fall back to
// defaults.
func NewEngine(cfg Config, logger *zap.SugaredLogger) *Engine {
	def := DefaultConfig()
	if cfg.TrendBand <= 0 {
		cfg.TrendBand = def.TrendBand
	}
	if cfg.TopRiskFactors <= 0 {
		cfg.TopRiskFactors = def.TopRiskFactors
	}
	if cfg.Shards <= 0 {
		cfg.Shards = def.Shards
	}
	return &Engine{logger: logger, cfg: cfg}
}

// scorePoint is one client analysis on the timeline, carrying the overall
// compliance score (0-100, higher is better).
type scorePoint struct {
	at    time.Time
	score float64
}

// partial holds the associative piece of the aggregation one shard
// produces. Sums and counts merge deterministically; trends need the full
// per-client timeline so they are classified after the merge.
type partial struct {
	total      int
	riskCounts map[compliance.RiskLevel]int
	byType     map[string]*groupAccum
	byClient   map[string]*clientAccum
	ruleCounts map[string]*ruleAccum
	totalViol  int
	resolved   int
}

type groupAccum struct {
	count      int
	riskCounts map[compliance.RiskLevel]int
	scoreSum   float64
}

type clientAccum struct {
	groupAccum
	timeline []scorePoint
}

type ruleAccum struct {
	ruleID string
	name   string
	action string
	count  int
}

func newPartial() *partial {
	return &partial{
		riskCounts: make(map[compliance.RiskLevel]int),
		byType:     make(map[string]*groupAccum),
		byClient:   make(map[string]*clientAccum),
		ruleCounts: make(map[string]*ruleAccum),
	}
}

// ComputeRiskAnalytics aggregates the supplied analyses (restricted to
// the period) into fleet-level risk analytics. The batch is sharded and
// aggregated in parallel; the merge is deterministic because every
// accumulated quantity is a sum or count.
func (e *Engine) ComputeRiskAnalytics(ctx context.Context, analyses []compliance.ContractComplianceAnalysis, contracts []compliance.Contract, period Period) (*RiskAnalytics, error) {
	inWindow := make([]compliance.ContractComplianceAnalysis, 0, len(analyses))
	for _, a := range analyses {
		if period.Contains(a.AnalyzedAt) {
			inWindow = append(inWindow, a)
		}
	}
	metrics.AnalyticsBatchSize.Observe(float64(len(inWindow)))

	contractsByID := make(map[string]compliance.Contract, len(contracts))
	for _, c := range contracts {
		contractsByID[c.ID] = c
	}

	shards := e.cfg.Shards
	if shards > len(inWindow) {
		shards = len(inWindow)
	}
	if shards < 1 {
		shards = 1
	}

	partials := make([]*partial, shards)
	g, ctx := errgroup.WithContext(ctx)
	chunk := (len(inWindow) + shards - 1) / shards
	for i := 0; i < shards; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if hi > len(inWindow) {
			hi = len(inWindow)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[i] = e.aggregateShard(inWindow[lo:hi], contractsByID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newPartial()
	for _, p := range partials {
		if p != nil {
			merged.merge(p)
		}
	}

	return e.finalize(merged, period), nil
}

// aggregateShard folds one slice of analyses into a partial.
func (e *Engine) aggregateShard(analyses []compliance.ContractComplianceAnalysis, contractsByID map[string]compliance.Contract) *partial {
	p := newPartial()
	for _, a := range analyses {
		contract := contractsByID[a.ContractID]

		contractType := contract.ContractType
		if contractType == "" {
			contractType = "UNKNOWN"
		}
		clientID := a.ClientID
		if clientID == "" {
			clientID = contract.ClientID
		}
		if clientID == "" {
			clientID = "UNKNOWN"
		}

		p.total++
		p.riskCounts[a.OverallRiskLevel]++

		group := p.byType[contractType]
		if group == nil {
			group = &groupAccum{riskCounts: make(map[compliance.RiskLevel]int)}
			p.byType[contractType] = group
		}
		group.count++
		group.riskCounts[a.OverallRiskLevel]++
		group.scoreSum += RiskScore(a.OverallRiskLevel)

		client := p.byClient[clientID]
		if client == nil {
			client = &clientAccum{groupAccum: groupAccum{riskCounts: make(map[compliance.RiskLevel]int)}}
			p.byClient[clientID] = client
		}
		client.count++
		client.riskCounts[a.OverallRiskLevel]++
		client.scoreSum += RiskScore(a.OverallRiskLevel)
		client.timeline = append(client.timeline, scorePoint{at: a.AnalyzedAt, score: float64(a.OverallScore)})

		for _, v := range a.AllViolations() {
			p.totalViol++
			if v.Resolved {
				p.resolved++
			}
			acc := p.ruleCounts[v.RuleID]
			if acc == nil {
				acc = &ruleAccum{ruleID: v.RuleID, name: v.RuleName, action: v.SuggestedAction}
				p.ruleCounts[v.RuleID] = acc
			}
			acc.count++
		}
	}
	return p
}

// merge folds other into p. Shards are merged in index order so equal
// timestamps keep their input order on the timeline.
func (p *partial) merge(other *partial) {
	p.total += other.total
	p.totalViol += other.totalViol
	p.resolved += other.resolved
	for level, n := range other.riskCounts {
		p.riskCounts[level] += n
	}
	for key, g := range other.byType {
		dst := p.byType[key]
		if dst == nil {
			dst = &groupAccum{riskCounts: make(map[compliance.RiskLevel]int)}
			p.byType[key] = dst
		}
		dst.count += g.count
		dst.scoreSum += g.scoreSum
		for level, n := range g.riskCounts {
			dst.riskCounts[level] += n
		}
	}
	for key, c := range other.byClient {
		dst := p.byClient[key]
		if dst == nil {
			dst = &clientAccum{groupAccum: groupAccum{riskCounts: make(map[compliance.RiskLevel]int)}}
			p.byClient[key] = dst
		}
		dst.count += c.count
		dst.scoreSum += c.scoreSum
		for level, n := range c.riskCounts {
			dst.riskCounts[level] += n
		}
		dst.timeline = append(dst.timeline, c.timeline...)
	}
	for key, r := range other.ruleCounts {
		dst := p.ruleCounts[key]
		if dst == nil {
			p.ruleCounts[key] = &ruleAccum{ruleID: r.ruleID, name: r.name, action: r.action, count: r.count}
			continue
		}
		dst.count += r.count
	}
}

// finalize converts the merged partial into the reported analytics.
func (e *Engine) finalize(p *partial, period Period) *RiskAnalytics {
	out := &RiskAnalytics{
		Period:           period,
		TotalContracts:   p.total,
		RiskDistribution: p.riskCounts,
		ByContractType:   make(map[string]ContractTypeBreakdown, len(p.byType)),
		ByClient:         make(map[string]ClientBreakdown, len(p.byClient)),
		GeneratedAt:      time.Now(),
	}

	for key, g := range p.byType {
		out.ByContractType[key] = ContractTypeBreakdown{
			Count:            g.count,
			RiskDistribution: g.riskCounts,
			AverageRiskScore: g.scoreSum / float64(g.count),
		}
	}

	for key, c := range p.byClient {
		out.ByClient[key] = ClientBreakdown{
			Count:            c.count,
			RiskDistribution: c.riskCounts,
			AverageRiskScore: c.scoreSum / float64(c.count),
			Trend:            e.classifyTrend(c.timeline),
		}
	}

	out.Mitigation = e.mitigation(p)
	return out
}

// classifyTrend compares the mean overall compliance score of the
// chronological first and second halves of a client's analyses. The score
// runs 0-100 with higher meaning better, so a second half lower by more
// than the band is DETERIORATING and higher by more is IMPROVING. On odd
// counts the median element joins the earlier half; fewer than two
// analyses classify STABLE.
func (e *Engine) classifyTrend(timeline []scorePoint) TrendClassification {
	if len(timeline) < 2 {
		return TrendStable
	}

	sort.SliceStable(timeline, func(i, j int) bool { return timeline[i].at.Before(timeline[j].at) })

	firstLen := (len(timeline) + 1) / 2
	firstMean := meanScore(timeline[:firstLen])
	secondMean := meanScore(timeline[firstLen:])

	switch {
	case secondMean < firstMean-e.cfg.TrendBand:
		return TrendDeteriorating
	case secondMean > firstMean+e.cfg.TrendBand:
		return TrendImproving
	default:
		return TrendStable
	}
}

func meanScore(points []scorePoint) float64 {
	sum := 0.0
	for _, pt := range points {
		sum += pt.score
	}
	return sum / float64(len(points))
}

// mitigation computes resolution effectiveness and the most frequently
// triggered rules across the period.
func (e *Engine) mitigation(p *partial) MitigationStats {
	stats := MitigationStats{
		TotalViolations:    p.totalViol,
		ResolvedViolations: p.resolved,
		CommonRiskFactors:  make([]string, 0, e.cfg.TopRiskFactors),
		RecommendedActions: make([]string, 0, e.cfg.TopRiskFactors),
	}
	if p.totalViol > 0 {
		stats.EffectivenessPct = float64(p.resolved) / float64(p.totalViol) * 100
	}

	top := make([]*ruleAccum, 0, len(p.ruleCounts))
	for _, r := range p.ruleCounts {
		top = append(top, r)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].count != top[j].count {
			return top[i].count > top[j].count
		}
		return top[i].ruleID < top[j].ruleID
	})
	if len(top) > e.cfg.TopRiskFactors {
		top = top[:e.cfg.TopRiskFactors]
	}

	seen := make(map[string]bool, len(top))
	for _, r := range top {
		stats.CommonRiskFactors = append(stats.CommonRiskFactors, r.name)
		if r.action != "" && !seen[r.action] {
			seen[r.action] = true
			stats.RecommendedActions = append(stats.RecommendedActions, r.action)
		}
	}
	return stats
}

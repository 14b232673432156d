// Package moderation turns raw analyzer output into a submission verdict.
// The gate fails open: when analysis is unavailable or unparseable the
// content is approved with no crisis signal, so a broken analyzer never
// blocks submissions.
package moderation

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/Pratiikpy/irys-confession-board/internal/analyzer"
	"github.com/Pratiikpy/irys-confession-board/internal/domain"
	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
)

// Analyzer is the slice of the analysis client the gate needs.
type Analyzer interface {
	Analyze(ctx context.Context, mode analyzer.Mode, content string) (*analyzer.Result, error)
}

// Gate evaluates confession text before it is stored or published.
type Gate struct {
	analyzer Analyzer
}

// NewGate creates a moderation gate. A nil analyzer disables analysis
// entirely, every submission is approved as-is.
func NewGate(a Analyzer) *Gate {
	return &Gate{analyzer: a}
}

// Evaluate runs moderation and enhancement analysis over the content and
// folds both into a single verdict. The crisis-support flag is raised only
// for identified authors who opted into support messages.
func (g *Gate) Evaluate(ctx context.Context, content string, author domain.AuthorContext) domain.Verdict {
	verdict := domain.Verdict{
		Decision:    domain.DecisionAccept,
		CrisisLevel: domain.CrisisNone,
		Moderation:  domain.ModerationState{Approved: true},
	}
	if g.analyzer == nil {
		return verdict
	}

	g.applyModeration(ctx, content, &verdict)
	g.applyEnhancement(ctx, content, &verdict)

	if verdict.CrisisLevel.NeedsSupport() && author.Identified() && author.CrisisSupport {
		verdict.CrisisSupport = true
	}
	return verdict
}

func (g *Gate) applyModeration(ctx context.Context, content string, verdict *domain.Verdict) {
	result, err := g.analyzer.Analyze(ctx, analyzer.ModeModeration, content)
	if err != nil {
		slog.Warn("Moderation analysis failed, approving content", "error", err)
		metrics.AnalyzerFallbacksTotal.Inc()
		return
	}

	moderation, ok := result.Moderation()
	if !ok {
		slog.Warn("Moderation analysis unparseable, approving content", "raw", result.Raw())
		metrics.AnalyzerFallbacksTotal.Inc()
		return
	}

	verdict.CrisisLevel = domain.ParseCrisisLevel(moderation.CrisisLevel)

	switch moderation.RecommendedAction {
	case "remove":
		verdict.Decision = domain.DecisionReject
		verdict.Moderation = domain.ModerationState{Approved: false}
	case "flag":
		verdict.Decision = domain.DecisionAccept
		verdict.Moderation = domain.ModerationState{Flagged: true, Approved: false}
	default:
		verdict.Decision = domain.DecisionAccept
		verdict.Moderation = domain.ModerationState{Approved: true}
	}
}

func (g *Gate) applyEnhancement(ctx context.Context, content string, verdict *domain.Verdict) {
	result, err := g.analyzer.Analyze(ctx, analyzer.ModeEnhancement, content)
	if err != nil {
		slog.Warn("Enhancement analysis failed, skipping metadata", "error", err)
		metrics.AnalyzerFallbacksTotal.Inc()
		return
	}

	enhancement, ok := result.Enhancement()
	if !ok {
		metrics.AnalyzerFallbacksTotal.Inc()
		return
	}

	verdict.Mood = enhancement.Mood
	verdict.Tags = lo.Uniq(enhancement.Tags)
}

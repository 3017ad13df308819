// Package orchestrator schedules per-framework analysis over a
// conversation: inline quick scans for every enabled framework, a
// cost-aware escalation policy gating deep analysis, isolated concurrent
// deep analyses, and assembly of the aggregate result with
// cross-framework insights.
package orchestrator

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/insight"
	"github.com/fyrsmithlabs/psyched/internal/logging"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
	"github.com/fyrsmithlabs/psyched/internal/registry"
	"github.com/fyrsmithlabs/psyched/internal/telemetry"
)

// maxRecentThemes bounds the per-framework theme history carried across
// turns.
const maxRecentThemes = 50

// Orchestrator runs the hybrid detection pipeline for one conversation
// turn. It holds no conversation state itself and is safe to share across
// concurrent calls for different conversations.
type Orchestrator struct {
	registry *registry.Registry
	insights *insight.Engine
	logger   *logging.Logger
	metrics  *telemetry.Metrics
	timeout  time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to a nop logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics sets the metrics sink. Nil disables recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTimeout sets an overall deadline per Analyze call. Frameworks still
// pending at the deadline are force-degraded, never dropped. Zero
// disables the deadline.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New creates an orchestrator over a registry.
func New(reg *registry.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: reg,
		insights: insight.NewEngine(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// escalation is one framework selected for deep analysis this turn.
type escalation struct {
	name   string
	entry  *registry.Entry
	scan   pattern.ScanResult
	window []conversation.Message
}

// Analyze runs the full pipeline over a conversation. history carries
// per-framework state across turns and is mutated in place; nil means no
// prior state. Analyze never fails for per-conversation reasons: every
// runtime problem is absorbed into a degraded per-framework entry and the
// returned aggregate is always complete.
func (o *Orchestrator) Analyze(ctx context.Context, messages []conversation.Message, conversationID, messageID string, history History) MultiFrameworkAnalysis {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	if history == nil {
		history = make(History)
	}

	// Index of the newest message, used by the cooldown policy and theme
	// observations. -1 for an empty conversation.
	messageIndex := len(messages) - 1

	names := o.registry.Enabled()
	results := make(map[string]framework.Analysis, len(names))
	var escalations []escalation

	// Phase 1: inline quick scans and the trigger policy. No suspension
	// points here; every enabled framework gets exactly one scan.
	for _, name := range names {
		entry, err := o.registry.Get(name)
		if err != nil {
			continue
		}
		window := conversation.Window(messages, entry.Config.WindowSize)
		scan := entry.QuickScan(window)
		o.metrics.RecordScan(name)

		rec := history.entry(name)
		if scan.HasPatterns {
			observeThemes(rec, scan, messageIndex)
		}

		if !shouldEscalate(scan, rec, entry.Config, messageIndex) {
			results[name] = framework.Skipped(name, scan)
			continue
		}
		o.metrics.RecordEscalation(name)
		escalations = append(escalations, escalation{name: name, entry: entry, scan: scan, window: window})
	}

	o.logger.Debug(ctx, "quick scans complete",
		zap.Int("frameworks", len(names)),
		zap.Int("escalated", len(escalations)))

	// Phase 2: deep analyses run concurrently, each writing only its own
	// slot. Failures never cross framework boundaries.
	analyses := make([]framework.Analysis, len(escalations))
	g, gctx := errgroup.WithContext(ctx)
	for i, esc := range escalations {
		g.Go(func() error {
			analyses[i] = o.deepAnalyze(gctx, esc)
			return nil
		})
	}
	_ = g.Wait()

	// Phase 3: single-writer merge over the settled snapshot.
	for i, esc := range escalations {
		analysis := analyses[i]
		if analysis.LLMUsed {
			history.entry(esc.name).LastDeepAnalysisMessage = messageIndex
		}
		results[esc.name] = analysis
	}

	for name, analysis := range results {
		entry, err := o.registry.Get(name)
		if err != nil {
			continue
		}
		results[name] = filterElements(analysis, entry.Config.ConfidenceThreshold)
	}

	themes := make(map[string][]insight.ThemeObservation, len(history))
	for name, rec := range history {
		themes[name] = rec.RecentThemes
	}
	insights := o.insights.Detect(results, themes)
	for _, ins := range insights {
		o.metrics.RecordInsight(string(ins.Type))
	}

	result := MultiFrameworkAnalysis{
		ConversationID:         conversationID,
		MessageID:              messageID,
		Frameworks:             results,
		CrossFrameworkInsights: insights,
		AnalysisSummary:        buildSummary(results, insights),
		TotalConfidence:        totalConfidence(results),
		Timestamp:              time.Now().UTC(),
	}

	o.logger.Info(ctx, "analysis complete",
		zap.Int("frameworks", len(results)),
		zap.Int("insights", len(insights)),
		zap.Float64("total_confidence", result.TotalConfidence))

	return result
}

// deepAnalyze runs one framework's deep analysis with full isolation:
// errors and panics degrade to pattern_only, and a deadline hit while the
// call was still pending force-degrades to an unanalyzed entry.
func (o *Orchestrator) deepAnalyze(ctx context.Context, esc escalation) (analysis framework.Analysis) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error(ctx, "deep analysis panicked",
				zap.String("framework", esc.name),
				zap.Any("panic", r))
			o.metrics.RecordDeepFailure(esc.name)
			analysis = framework.PatternOnly(esc.name, esc.scan)
		}
	}()

	start := time.Now()
	analysis, err := esc.entry.Detector.DeepAnalyze(ctx, esc.window, esc.scan)
	o.metrics.RecordDeepDuration(esc.name, time.Since(start))

	if err != nil {
		o.logger.Warn(ctx, "deep analysis failed, degrading",
			zap.String("framework", esc.name),
			zap.Error(err))
		analysis = framework.PatternOnly(esc.name, esc.scan)
	}
	if ctx.Err() != nil && !analysis.LLMUsed {
		analysis = framework.Skipped(esc.name, esc.scan)
	}
	if !analysis.LLMUsed {
		o.metrics.RecordDeepFailure(esc.name)
	}
	return analysis
}

// shouldEscalate applies the trigger policy: signal present and cooldown
// elapsed. The cooldown counter resets only on successful LLM analysis.
func shouldEscalate(scan pattern.ScanResult, rec *FrameworkHistory, cfg registry.Config, messageIndex int) bool {
	if !scan.HasPatterns {
		return false
	}
	if rec.LastDeepAnalysisMessage < 0 {
		return true
	}
	return messageIndex-rec.LastDeepAnalysisMessage >= cfg.AnalysisInterval
}

// observeThemes appends one observation per matched category, keeping the
// per-framework history bounded.
func observeThemes(rec *FrameworkHistory, scan pattern.ScanResult, messageIndex int) {
	for _, category := range scan.Categories() {
		rec.RecentThemes = append(rec.RecentThemes, insight.ThemeObservation{
			Theme:        category,
			MessageIndex: messageIndex,
		})
	}
	if excess := len(rec.RecentThemes) - maxRecentThemes; excess > 0 {
		rec.RecentThemes = append(rec.RecentThemes[:0:0], rec.RecentThemes[excess:]...)
	}
}

// filterElements drops elements below the framework's configured
// confidence threshold. The analysis-level confidence score is left as
// computed by the detector.
func filterElements(analysis framework.Analysis, threshold float64) framework.Analysis {
	if threshold <= 0 || len(analysis.Elements) == 0 {
		return analysis
	}
	kept := analysis.Elements[:0:0]
	for _, el := range analysis.Elements {
		if el.Confidence >= threshold {
			kept = append(kept, el)
		}
	}
	analysis.Elements = kept
	return analysis
}

// totalConfidence is the unweighted mean over frameworks with at least
// one detected element, 0 when none have detections.
func totalConfidence(results map[string]framework.Analysis) float64 {
	var sum float64
	var n int
	for _, analysis := range results {
		if len(analysis.Elements) == 0 {
			continue
		}
		sum += analysis.ConfidenceScore
		n++
	}
	if n == 0 {
		return 0
	}
	return framework.Clamp01(sum / float64(n))
}

package orchestrator

import (
	"time"

	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/insight"
)

// MultiFrameworkAnalysis is the aggregate result of one orchestration run.
// It is assembled once, after every framework has settled, and never
// mutated afterwards.
type MultiFrameworkAnalysis struct {
	ConversationID         string                        `json:"conversation_id"`
	MessageID              string                        `json:"message_id"`
	Frameworks             map[string]framework.Analysis `json:"frameworks"`
	CrossFrameworkInsights []insight.Insight             `json:"cross_framework_insights"`
	AnalysisSummary        Summary                       `json:"analysis_summary"`
	TotalConfidence        float64                       `json:"total_confidence"`
	Timestamp              time.Time                     `json:"timestamp"`
}

// Summary condenses an aggregate result into counts and headlines.
type Summary struct {
	FrameworksAnalyzed         int      `json:"frameworks_analyzed"`
	FrameworksWithDetections   int      `json:"frameworks_with_detections"`
	TotalElements              int      `json:"total_elements"`
	InsightCount               int      `json:"insight_count"`
	HighestConfidenceFramework string   `json:"highest_confidence_framework,omitempty"`
	DominantThemes             []string `json:"dominant_themes,omitempty"`
}

// FrameworkHistory carries the per-framework state that outlives a single
// orchestration call. The caller owns it and passes it back on the next
// turn; the orchestrator mutates it in place.
type FrameworkHistory struct {
	// LastDeepAnalysisMessage is the message index of the last successful
	// LLM analysis, or -1 when deep analysis has never run.
	LastDeepAnalysisMessage int                        `json:"last_deep_analysis_message"`
	RecentThemes            []insight.ThemeObservation `json:"recent_themes,omitempty"`
}

// History maps framework names to their per-conversation state.
type History map[string]*FrameworkHistory

// NewHistory creates an empty history for the given framework names.
func NewHistory(names ...string) History {
	h := make(History, len(names))
	for _, name := range names {
		h[name] = &FrameworkHistory{LastDeepAnalysisMessage: -1}
	}
	return h
}

// entry returns the history record for a framework, creating it on first
// use so callers may pass a partially populated map.
func (h History) entry(name string) *FrameworkHistory {
	if rec, ok := h[name]; ok {
		return rec
	}
	rec := &FrameworkHistory{LastDeepAnalysisMessage: -1}
	h[name] = rec
	return rec
}

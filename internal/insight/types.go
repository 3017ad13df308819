// Package insight derives relationships between the per-framework results
// of one orchestration run: overlap, contradiction, reinforcement, and
// recurring single-framework patterns.
package insight

// Type classifies a cross-framework insight.
type Type string

const (
	// TypeOverlap indicates two frameworks detected the same underlying
	// content.
	TypeOverlap Type = "overlap"
	// TypeContradiction indicates elements from different frameworks
	// characterize the same subject incompatibly.
	TypeContradiction Type = "contradiction"
	// TypeReinforcement indicates the same thematic category recurs
	// across frameworks, raising aggregate confidence.
	TypeReinforcement Type = "reinforcement"
	// TypePattern indicates a theme recurring within a single framework
	// across the conversation history.
	TypePattern Type = "pattern"
)

// Insight is one derived relationship. Except for TypePattern, which is
// single-framework by definition, FrameworksInvolved names at least two
// distinct frameworks.
type Insight struct {
	ID                   string   `json:"id"`
	Type                 Type     `json:"insight_type"`
	FrameworksInvolved   []string `json:"frameworks_involved"`
	Description          string   `json:"description"`
	Confidence           float64  `json:"confidence"`
	Evidence             []string `json:"evidence,omitempty"`
	TherapeuticRelevance string   `json:"therapeutic_relevance,omitempty"`
}

// ThemeObservation records a pattern category seen for a framework at a
// message index. The orchestrator accumulates these across turns and
// feeds them back for recurring-pattern detection.
type ThemeObservation struct {
	Theme        string `json:"theme"`
	MessageIndex int    `json:"message_index"`
}

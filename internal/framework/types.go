// Package framework defines the detector contract shared by every
// psychological framework and the analysis types they produce. Framework
// variants differ only in their pattern vocabulary and element taxonomy;
// the detection logic is written once.
package framework

import (
	"context"
	"time"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

// AnalysisType describes how a framework analysis was produced.
type AnalysisType string

const (
	// AnalysisPatternOnly means the result was derived from the lexical
	// scan alone, either because deep analysis was not run or because it
	// failed and degraded.
	AnalysisPatternOnly AnalysisType = "pattern_only"
	// AnalysisHybrid means a pattern scan triggered a model call whose
	// structured output was merged with the scan.
	AnalysisHybrid AnalysisType = "hybrid"
	// AnalysisLLMFull means the model analyzed the window without a
	// pattern gate.
	AnalysisLLMFull AnalysisType = "llm_full"
)

// Element is one detected unit of psychological content. Confidence and
// intensity are always clamped to [0,1]; evidence must be non-empty
// whenever confidence is positive.
type Element struct {
	ID                   string            `json:"id"`
	Type                 string            `json:"type"`
	Subtype              string            `json:"subtype,omitempty"`
	Evidence             string            `json:"evidence"`
	Confidence           float64           `json:"confidence"`
	Intensity            float64           `json:"intensity"`
	FirstDetectedMessage *int              `json:"first_detected_message,omitempty"`
	Attributes           map[string]string `json:"attributes,omitempty"`
}

// Valid reports whether the element satisfies its invariants.
func (e Element) Valid() bool {
	if e.Confidence < 0 || e.Confidence > 1 {
		return false
	}
	if e.Intensity < 0 || e.Intensity > 1 {
		return false
	}
	if e.Confidence > 0 && e.Evidence == "" {
		return false
	}
	return true
}

// Analysis is the per-framework result of one orchestration turn.
// Analyzed=false is a valid terminal state meaning "skipped or failed
// gracefully", distinct from "ran and found nothing".
type Analysis struct {
	FrameworkName   string              `json:"framework_name"`
	Analyzed        bool                `json:"analyzed"`
	LLMUsed         bool                `json:"llm_used"`
	AnalysisType    AnalysisType        `json:"analysis_type"`
	ConfidenceScore float64             `json:"confidence_score"`
	Elements        []Element           `json:"elements_detected"`
	PatternsFound   map[string][]string `json:"patterns_found,omitempty"`
	Evidence        []string            `json:"evidence,omitempty"`
	Timestamp       time.Time           `json:"timestamp"`
}

// Detector is the capability set every framework implementation satisfies.
// Implementations must be stateless with respect to conversations; a
// detector instance is shared across concurrent orchestration calls.
type Detector interface {
	// Name returns the unique framework name.
	Name() string

	// Patterns returns the raw pattern definition. It is called once at
	// registration to build the immutable compiled set.
	Patterns() pattern.Definition

	// DeepAnalyze runs model-driven extraction over the message window
	// that triggered the scan result. Implementations degrade failures
	// to a pattern_only Analysis internally; a non-nil error is treated
	// by the orchestrator as an additional degradation signal, never
	// propagated.
	DeepAnalyze(ctx context.Context, messages []conversation.Message, scan pattern.ScanResult) (Analysis, error)
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// DegradedConfidence derives a confidence score from a scan result alone,
// used when deep analysis is unavailable or fails. The score grows with
// the number of matched categories and is capped well below full
// confidence: a lexical match is a hint, not an analysis.
func DegradedConfidence(scan pattern.ScanResult) float64 {
	n := len(scan.PatternsFound)
	if n == 0 {
		return 0
	}
	score := 0.3 + 0.15*float64(n)
	if score > 0.8 {
		score = 0.8
	}
	return score
}

// PatternOnly builds the degraded analysis for a framework whose deep
// analysis failed or was unavailable.
func PatternOnly(name string, scan pattern.ScanResult) Analysis {
	return Analysis{
		FrameworkName:   name,
		Analyzed:        true,
		LLMUsed:         false,
		AnalysisType:    AnalysisPatternOnly,
		ConfidenceScore: DegradedConfidence(scan),
		PatternsFound:   scan.PatternsFound,
		Timestamp:       time.Now().UTC(),
	}
}

// Skipped builds the terminal "not analyzed" entry for a framework that
// was not escalated this turn, or that was force-degraded at a deadline.
func Skipped(name string, scan pattern.ScanResult) Analysis {
	return Analysis{
		FrameworkName: name,
		Analyzed:      false,
		AnalysisType:  AnalysisPatternOnly,
		PatternsFound: scan.PatternsFound,
		Timestamp:     time.Now().UTC(),
	}
}

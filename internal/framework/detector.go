package framework

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/llm"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

// Profile is the data that distinguishes one framework from another. The
// detection machinery is identical across frameworks; only the vocabulary
// varies.
type Profile struct {
	// Name is the unique framework name, e.g. "cbt".
	Name string
	// Patterns is the raw lexical pattern definition.
	Patterns pattern.Definition
	// ElementTypes is the framework's element taxonomy. Model output
	// with a type outside this list is kept but tagged in Attributes.
	ElementTypes []string
	// PromptIntro frames the model's task for this framework.
	PromptIntro string
}

// HybridDetector implements Detector for any framework profile: cheap
// lexical scanning gates a selective model call, and model failures
// degrade to a pattern-only result.
type HybridDetector struct {
	profile Profile
	client  llm.Client
	types   map[string]bool
}

// NewHybridDetector builds a detector from a profile. The client may be
// nil, in which case every deep analysis degrades to pattern_only.
func NewHybridDetector(profile Profile, client llm.Client) *HybridDetector {
	types := make(map[string]bool, len(profile.ElementTypes))
	for _, t := range profile.ElementTypes {
		types[t] = true
	}
	return &HybridDetector{profile: profile, client: client, types: types}
}

// Name returns the framework name.
func (d *HybridDetector) Name() string {
	return d.profile.Name
}

// Patterns returns the raw pattern definition.
func (d *HybridDetector) Patterns() pattern.Definition {
	return d.profile.Patterns
}

// DeepAnalyze extracts structured elements from the window via the model.
// Transport errors, unparseable output, and output with no valid elements
// all degrade to pattern_only; DeepAnalyze never returns an error for a
// runtime failure.
func (d *HybridDetector) DeepAnalyze(ctx context.Context, messages []conversation.Message, scan pattern.ScanResult) (Analysis, error) {
	if d.client == nil || !d.client.Available() {
		return PatternOnly(d.profile.Name, scan), nil
	}

	system, user := d.buildPrompt(messages, scan)

	raw, err := d.client.Complete(ctx, system, user)
	if err != nil {
		return PatternOnly(d.profile.Name, scan), nil
	}

	rawElements, err := llm.ParseElementsJSON(raw)
	if err != nil {
		return PatternOnly(d.profile.Name, scan), nil
	}

	elements := d.convertElements(rawElements)
	if len(elements) == 0 {
		return PatternOnly(d.profile.Name, scan), nil
	}

	var sum float64
	evidence := make([]string, 0, len(elements))
	for _, e := range elements {
		sum += e.Confidence
		evidence = append(evidence, e.Evidence)
	}

	return Analysis{
		FrameworkName:   d.profile.Name,
		Analyzed:        true,
		LLMUsed:         true,
		AnalysisType:    AnalysisHybrid,
		ConfidenceScore: Clamp01(sum / float64(len(elements))),
		Elements:        elements,
		PatternsFound:   scan.PatternsFound,
		Evidence:        evidence,
		Timestamp:       time.Now().UTC(),
	}, nil
}

// convertElements validates, clamps, and assigns IDs to model output.
// Elements violating the evidence invariant are dropped rather than
// repaired; unknown types are kept but tagged.
func (d *HybridDetector) convertElements(raw []llm.RawElement) []Element {
	var elements []Element
	for _, r := range raw {
		e := Element{
			ID:                   uuid.New().String(),
			Type:                 r.Type,
			Subtype:              r.Subtype,
			Evidence:             strings.TrimSpace(r.Evidence),
			Confidence:           Clamp01(r.Confidence),
			Intensity:            Clamp01(r.Intensity),
			FirstDetectedMessage: r.FirstDetectedMessage,
			Attributes:           r.Attributes,
		}
		if e.Type == "" {
			continue
		}
		if e.Confidence > 0 && e.Evidence == "" {
			continue
		}
		if len(d.types) > 0 && !d.types[e.Type] {
			if e.Attributes == nil {
				e.Attributes = make(map[string]string)
			}
			e.Attributes["unlisted_type"] = "true"
		}
		elements = append(elements, e)
	}
	return elements
}

// analysisPrompt is the shared system-prompt frame; the profile intro
// specializes it per framework.
const analysisPrompt = `You are an expert at structured psychological analysis of conversations.

%s

Analyze only what is evidenced in the user's own words. Respond with a JSON object:
{"elements": [{"type": "...", "subtype": "...", "evidence": "<verbatim quote>", "confidence": 0.0-1.0, "intensity": 0.0-1.0, "first_detected_message": <index or null>, "attributes": {}}]}

Allowed element types: %s.
Use an empty elements array when nothing is clearly evidenced. Respond ONLY with the JSON object, no additional text.`

// buildPrompt assembles the system and user prompts for the model call.
// Conversation content is scrubbed for pasted credentials before leaving
// the process.
func (d *HybridDetector) buildPrompt(messages []conversation.Message, scan pattern.ScanResult) (system, user string) {
	system = fmt.Sprintf(analysisPrompt, d.profile.PromptIntro, strings.Join(d.profile.ElementTypes, ", "))

	var b strings.Builder
	b.WriteString("Conversation window:\n")
	for i, m := range messages {
		content := llm.ScrubSecrets(m.Content)
		fmt.Fprintf(&b, "[%d] %s: %s\n", i, m.Role, content)
	}

	if len(scan.PatternsFound) > 0 {
		b.WriteString("\nLexical scan matched categories:\n")
		for _, cat := range scan.Categories() {
			fmt.Fprintf(&b, "- %s: %s\n", cat, strings.Join(scan.PatternsFound[cat], ", "))
		}
	}

	return system, b.String()
}

var _ Detector = (*HybridDetector)(nil)

package insight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/psyched/internal/framework"
)

func analyzed(name string, score float64, elements ...framework.Element) framework.Analysis {
	return framework.Analysis{
		FrameworkName:   name,
		Analyzed:        true,
		LLMUsed:         true,
		AnalysisType:    framework.AnalysisHybrid,
		ConfidenceScore: score,
		Elements:        elements,
	}
}

func elem(typ, subtype, evidence string, confidence, intensity float64) framework.Element {
	return framework.Element{
		ID: typ + "-" + subtype, Type: typ, Subtype: subtype,
		Evidence: evidence, Confidence: confidence, Intensity: intensity,
	}
}

func insightsOfType(insights []Insight, t Type) []Insight {
	var out []Insight
	for _, ins := range insights {
		if ins.Type == t {
			out = append(out, ins)
		}
	}
	return out
}

func TestDetect_Overlap(t *testing.T) {
	evidence := "i always expect the worst to happen"
	frameworks := map[string]framework.Analysis{
		"cbt":     analyzed("cbt", 0.8, elem("cognitive_distortion", "catastrophizing", evidence, 0.8, 0.6)),
		"jungian": analyzed("jungian", 0.6, elem("shadow_content", "", evidence, 0.6, 0.4)),
	}

	insights := NewEngine().Detect(frameworks, nil)
	overlaps := insightsOfType(insights, TypeOverlap)

	require.Len(t, overlaps, 1)
	assert.ElementsMatch(t, []string{"cbt", "jungian"}, overlaps[0].FrameworksInvolved)
	assert.InDelta(t, 0.7, overlaps[0].Confidence, 1e-9)
	assert.Len(t, overlaps[0].Evidence, 2)
}

func TestDetect_OverlapByMessageIndex(t *testing.T) {
	idx := 4
	a := elem("narrative_theme", "", "my whole story shifted after the move", 0.7, 0.5)
	a.FirstDetectedMessage = &idx
	b := elem("attachment_injury", "", "completely different wording here", 0.5, 0.5)
	b.FirstDetectedMessage = &idx

	frameworks := map[string]framework.Analysis{
		"narrative":  analyzed("narrative", 0.7, a),
		"attachment": analyzed("attachment", 0.5, b),
	}

	overlaps := insightsOfType(NewEngine().Detect(frameworks, nil), TypeOverlap)
	require.Len(t, overlaps, 1)
	assert.InDelta(t, 0.6, overlaps[0].Confidence, 1e-9)
}

func TestDetect_NoOverlapForDistinctEvidence(t *testing.T) {
	frameworks := map[string]framework.Analysis{
		"cbt":     analyzed("cbt", 0.8, elem("automatic_thought", "", "deadlines make me panic", 0.8, 0.6)),
		"jungian": analyzed("jungian", 0.6, elem("symbol", "", "a recurring dream about water", 0.6, 0.4)),
	}

	overlaps := insightsOfType(NewEngine().Detect(frameworks, nil), TypeOverlap)
	assert.Empty(t, overlaps)
}

func TestDetect_Contradiction(t *testing.T) {
	frameworks := map[string]framework.Analysis{
		framework.NameAttachment: analyzed(framework.NameAttachment, 0.8,
			elem("attachment_style", "secure", "i feel safe with my partner", 0.8, 0.3)),
		framework.NameIFS: analyzed(framework.NameIFS, 0.9,
			elem("exile", "", "the hurt child i buried long ago still aches", 0.9, 0.8)),
	}

	contradictions := insightsOfType(NewEngine().Detect(frameworks, nil), TypeContradiction)
	require.Len(t, contradictions, 1)

	c := contradictions[0]
	assert.ElementsMatch(t, []string{framework.NameAttachment, framework.NameIFS}, c.FrameworksInvolved)
	// Scaled below the plain mean to reflect interpretive uncertainty.
	assert.InDelta(t, 0.7*(0.8+0.9)/2, c.Confidence, 1e-9)
	assert.NotEmpty(t, c.TherapeuticRelevance)
}

func TestDetect_ContradictionRequiresIntensity(t *testing.T) {
	frameworks := map[string]framework.Analysis{
		framework.NameAttachment: analyzed(framework.NameAttachment, 0.8,
			elem("attachment_style", "secure", "i feel safe", 0.8, 0.3)),
		framework.NameIFS: analyzed(framework.NameIFS, 0.9,
			elem("exile", "", "an old wound, mostly settled", 0.9, 0.2)),
	}

	contradictions := insightsOfType(NewEngine().Detect(frameworks, nil), TypeContradiction)
	assert.Empty(t, contradictions)
}

func TestDetect_Reinforcement(t *testing.T) {
	a := analyzed("cbt", 0.8, elem("automatic_thought", "", "i avoid the meetings", 0.8, 0.5))
	a.PatternsFound = map[string][]string{"avoidance": {"i avoid"}}
	b := analyzed("ifs", 0.6, elem("manager", "", "i keep everything under control", 0.6, 0.5))
	b.PatternsFound = map[string][]string{"avoidance": {"putting it off"}}
	c := analyzed("narrative", 0.7, elem("self_story", "", "it was all downhill from there", 0.7, 0.5))
	c.PatternsFound = map[string][]string{"avoidance": {"i can't face"}}

	frameworks := map[string]framework.Analysis{"cbt": a, "ifs": b, "narrative": c}

	reinforcements := insightsOfType(NewEngine().Detect(frameworks, nil), TypeReinforcement)
	require.Len(t, reinforcements, 1)

	r := reinforcements[0]
	assert.Len(t, r.FrameworksInvolved, 3)
	// Mean of 0.8, 0.6, 0.7 plus one corroboration bonus.
	assert.InDelta(t, 0.7+0.05, r.Confidence, 1e-9)
}

func TestDetect_ReinforcementCappedAtOne(t *testing.T) {
	frameworks := make(map[string]framework.Analysis)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		an := analyzed(name, 1.0, elem("x", "", "evidence for "+name, 1.0, 0.5))
		an.PatternsFound = map[string][]string{"theme": {"kw"}}
		frameworks[name] = an
	}

	reinforcements := insightsOfType(NewEngine().Detect(frameworks, nil), TypeReinforcement)
	require.Len(t, reinforcements, 1)
	assert.Equal(t, 1.0, reinforcements[0].Confidence)
}

func TestDetect_RecurringPattern(t *testing.T) {
	themes := map[string][]ThemeObservation{
		"cbt": {
			{Theme: "rumination", MessageIndex: 2},
			{Theme: "rumination", MessageIndex: 7},
			{Theme: "rumination", MessageIndex: 11},
			{Theme: "avoidance", MessageIndex: 7},
		},
	}

	patterns := insightsOfType(NewEngine().Detect(nil, themes), TypePattern)
	require.Len(t, patterns, 1)

	p := patterns[0]
	assert.Equal(t, []string{"cbt"}, p.FrameworksInvolved)
	assert.Contains(t, p.Description, "rumination")
	assert.InDelta(t, 0.5, p.Confidence, 1e-9)
}

func TestDetect_LowConfidenceDiscarded(t *testing.T) {
	evidence := "barely there signal in this sentence"
	frameworks := map[string]framework.Analysis{
		"cbt":     analyzed("cbt", 0.2, elem("automatic_thought", "", evidence, 0.2, 0.1)),
		"jungian": analyzed("jungian", 0.2, elem("symbol", "", evidence, 0.2, 0.1)),
	}

	insights := NewEngine().Detect(frameworks, nil)
	for _, ins := range insights {
		assert.GreaterOrEqual(t, ins.Confidence, 0.3)
	}
	assert.Empty(t, insightsOfType(insights, TypeOverlap))
}

func TestDetect_SkippedFrameworksIgnored(t *testing.T) {
	frameworks := map[string]framework.Analysis{
		"cbt": {FrameworkName: "cbt", Analyzed: false},
		"ifs": analyzed("ifs", 0.9, elem("exile", "", "some evidence", 0.9, 0.7)),
	}

	insights := NewEngine().Detect(frameworks, nil)
	assert.Empty(t, insightsOfType(insights, TypeOverlap))
	assert.Empty(t, insightsOfType(insights, TypeContradiction))
}

func TestDetect_SortedByConfidence(t *testing.T) {
	evidence := "the same piece of evidence in both frameworks"
	a := analyzed("cbt", 0.9, elem("automatic_thought", "", evidence, 0.9, 0.5))
	a.PatternsFound = map[string][]string{"theme": {"kw"}}
	b := analyzed("jungian", 0.4, elem("symbol", "", evidence, 0.4, 0.5))
	b.PatternsFound = map[string][]string{"theme": {"kw"}}

	insights := NewEngine().Detect(map[string]framework.Analysis{"cbt": a, "jungian": b}, nil)
	require.NotEmpty(t, insights)
	for i := 1; i < len(insights); i++ {
		assert.GreaterOrEqual(t, insights[i-1].Confidence, insights[i].Confidence)
	}
}

package framework

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

// stubClient is a canned llm.Client for detector tests.
type stubClient struct {
	response  string
	err       error
	available bool
	lastUser  string
}

func (s *stubClient) Complete(_ context.Context, _, user string) (string, error) {
	s.lastUser = user
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubClient) Available() bool { return s.available }

func testScan() pattern.ScanResult {
	return pattern.ScanResult{
		Framework:   NameCBT,
		HasPatterns: true,
		PatternsFound: map[string][]string{
			"catastrophizing": {"worst case"},
			"rumination":      {"can't stop thinking"},
		},
	}
}

func testWindow() []conversation.Message {
	return []conversation.Message{
		{Role: conversation.RoleUser, Content: "I can't stop thinking about the worst case."},
		{Role: conversation.RoleAssistant, Content: "What would that look like?"},
	}
}

func TestDeepAnalyze_Success(t *testing.T) {
	client := &stubClient{
		available: true,
		response: `{"elements": [
			{"type": "cognitive_distortion", "subtype": "catastrophizing", "evidence": "the worst case", "confidence": 0.8, "intensity": 0.7},
			{"type": "automatic_thought", "evidence": "can't stop thinking", "confidence": 0.6, "intensity": 0.5}
		]}`,
	}
	detector := NewCBT(client)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)

	assert.True(t, analysis.Analyzed)
	assert.True(t, analysis.LLMUsed)
	assert.Equal(t, AnalysisHybrid, analysis.AnalysisType)
	require.Len(t, analysis.Elements, 2)
	assert.InDelta(t, 0.7, analysis.ConfidenceScore, 1e-9)
	assert.NotEmpty(t, analysis.Elements[0].ID)
	assert.Equal(t, testScan().PatternsFound, analysis.PatternsFound)

	for _, e := range analysis.Elements {
		assert.True(t, e.Valid(), "element %+v violates invariants", e)
	}
}

func TestDeepAnalyze_TransportFailureDegrades(t *testing.T) {
	client := &stubClient{available: true, err: errors.New("connection refused")}
	detector := NewCBT(client)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)

	assert.True(t, analysis.Analyzed)
	assert.False(t, analysis.LLMUsed)
	assert.Equal(t, AnalysisPatternOnly, analysis.AnalysisType)
	assert.Empty(t, analysis.Elements)
	// Two matched categories: 0.3 + 2*0.15.
	assert.InDelta(t, 0.6, analysis.ConfidenceScore, 1e-9)
}

func TestDeepAnalyze_MalformedOutputDegrades(t *testing.T) {
	client := &stubClient{available: true, response: "I'd rather chat about the weather."}
	detector := NewCBT(client)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)
	assert.Equal(t, AnalysisPatternOnly, analysis.AnalysisType)
	assert.False(t, analysis.LLMUsed)
}

func TestDeepAnalyze_NilClientDegrades(t *testing.T) {
	detector := NewCBT(nil)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)
	assert.Equal(t, AnalysisPatternOnly, analysis.AnalysisType)
}

func TestDeepAnalyze_InvalidElementsDropped(t *testing.T) {
	client := &stubClient{
		available: true,
		response: `{"elements": [
			{"type": "core_belief", "evidence": "", "confidence": 0.9, "intensity": 0.2},
			{"type": "", "evidence": "nameless", "confidence": 0.5},
			{"type": "core_belief", "evidence": "i'm not good enough", "confidence": 1.7, "intensity": -0.3}
		]}`,
	}
	detector := NewCBT(client)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)

	// Only the clampable element survives; the empty-evidence and
	// untyped ones are dropped.
	require.Len(t, analysis.Elements, 1)
	e := analysis.Elements[0]
	assert.Equal(t, 1.0, e.Confidence)
	assert.Equal(t, 0.0, e.Intensity)
	assert.True(t, e.Valid())
}

func TestDeepAnalyze_UnlistedTypeTagged(t *testing.T) {
	client := &stubClient{
		available: true,
		response:  `{"elements": [{"type": "vibe", "evidence": "something", "confidence": 0.4}]}`,
	}
	detector := NewCBT(client)

	analysis, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)
	require.Len(t, analysis.Elements, 1)
	assert.Equal(t, "true", analysis.Elements[0].Attributes["unlisted_type"])
}

func TestDeepAnalyze_PromptContainsWindowAndScan(t *testing.T) {
	client := &stubClient{
		available: true,
		response:  `{"elements": [{"type": "automatic_thought", "evidence": "e", "confidence": 0.5}]}`,
	}
	detector := NewCBT(client)

	_, err := detector.DeepAnalyze(context.Background(), testWindow(), testScan())
	require.NoError(t, err)

	assert.Contains(t, client.lastUser, "worst case")
	assert.Contains(t, client.lastUser, "catastrophizing")
}

func TestDeepAnalyze_ScrubsSecretsFromPrompt(t *testing.T) {
	client := &stubClient{
		available: true,
		response:  `{"elements": [{"type": "automatic_thought", "evidence": "e", "confidence": 0.5}]}`,
	}
	detector := NewCBT(client)

	window := []conversation.Message{
		{Role: conversation.RoleUser, Content: "here is my key sk-abcdefghijklmnopqrstuvwx and i feel awful"},
	}
	_, err := detector.DeepAnalyze(context.Background(), window, testScan())
	require.NoError(t, err)

	assert.False(t, strings.Contains(client.lastUser, "sk-abcdefghijklmnopqrstuvwx"))
	assert.Contains(t, client.lastUser, "[REDACTED:OPENAI_KEY]")
}

func TestDegradedConfidence(t *testing.T) {
	tests := []struct {
		name       string
		categories int
		want       float64
	}{
		{name: "no patterns", categories: 0, want: 0},
		{name: "one category", categories: 1, want: 0.45},
		{name: "two categories", categories: 2, want: 0.6},
		{name: "capped", categories: 9, want: 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found := make(map[string][]string)
			for i := 0; i < tt.categories; i++ {
				found[string(rune('a'+i))] = []string{"kw"}
			}
			scan := pattern.ScanResult{HasPatterns: tt.categories > 0, PatternsFound: found}
			assert.InDelta(t, tt.want, DegradedConfidence(scan), 1e-9)
		})
	}
}

func TestBuiltinDetectors_PatternsCompile(t *testing.T) {
	for _, d := range BuiltinDetectors(nil) {
		_, err := pattern.Compile(d.Patterns())
		require.NoError(t, err, "framework %s", d.Name())
	}
}

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

func testDetector(name string) *framework.HybridDetector {
	return framework.NewHybridDetector(framework.Profile{
		Name: name,
		Patterns: pattern.Definition{
			"category": {"en": {"keyword"}},
		},
	}, nil)
}

func TestRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDetector("cbt"), DefaultConfig()))

	entry, err := r.Get("cbt")
	require.NoError(t, err)
	assert.Equal(t, "cbt", entry.Detector.Name())

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegister_Duplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDetector("cbt"), DefaultConfig()))

	err := r.Register(testDetector("cbt"), DefaultConfig())
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegister_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "interval below one", cfg: Config{Enabled: true, AnalysisInterval: 0, WindowSize: 5, ConfidenceThreshold: 0.5}},
		{name: "window below one", cfg: Config{Enabled: true, AnalysisInterval: 1, WindowSize: 0, ConfidenceThreshold: 0.5}},
		{name: "threshold above one", cfg: Config{Enabled: true, AnalysisInterval: 1, WindowSize: 5, ConfidenceThreshold: 1.5}},
		{name: "threshold below zero", cfg: Config{Enabled: true, AnalysisInterval: 1, WindowSize: 5, ConfidenceThreshold: -0.1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New().Register(testDetector("cbt"), tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRegister_BadPatterns(t *testing.T) {
	bad := framework.NewHybridDetector(framework.Profile{
		Name:     "broken",
		Patterns: pattern.Definition{},
	}, nil)

	err := New().Register(bad, DefaultConfig())
	assert.ErrorIs(t, err, pattern.ErrPatternCompile)
}

func TestRegister_NilDetector(t *testing.T) {
	assert.ErrorIs(t, New().Register(nil, DefaultConfig()), ErrNilDetector)
}

func TestEnabled_RegistrationOrder(t *testing.T) {
	r := New()
	disabled := DefaultConfig()
	disabled.Enabled = false

	require.NoError(t, r.Register(testDetector("narrative"), DefaultConfig()))
	require.NoError(t, r.Register(testDetector("attachment"), disabled))
	require.NoError(t, r.Register(testDetector("cbt"), DefaultConfig()))

	assert.Equal(t, []string{"narrative", "cbt"}, r.Enabled())
	assert.Equal(t, []string{"narrative", "attachment", "cbt"}, r.Names())
}

func TestEntryQuickScan(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(testDetector("cbt"), DefaultConfig()))

	entry, err := r.Get("cbt")
	require.NoError(t, err)

	result := entry.QuickScan([]conversation.Message{
		{Role: conversation.RoleUser, Content: "this mentions the keyword plainly"},
	})
	assert.Equal(t, "cbt", result.Framework)
	assert.True(t, result.HasPatterns)
}

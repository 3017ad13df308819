package pattern

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/psyched/internal/conversation"
)

func userMsg(content string) conversation.Message {
	return conversation.Message{Role: conversation.RoleUser, Content: content}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{name: "empty definition", def: Definition{}},
		{name: "empty category name", def: Definition{"": {"en": {"word"}}}},
		{name: "empty language tag", def: Definition{"cat": {"": {"word"}}}},
		{name: "empty keyword", def: Definition{"cat": {"en": {"  "}}}},
		{name: "no keywords", def: Definition{"cat": {"en": {}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.def)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPatternCompile)
		})
	}
}

func TestScan_CJKSubstring(t *testing.T) {
	set, err := Compile(Definition{
		"catastrophizing": {"cn": {"最坏"}},
	})
	require.NoError(t, err)

	result := set.Scan([]conversation.Message{userMsg("我总是觉得最坏的情况会发生")})

	assert.True(t, result.HasPatterns)
	assert.Equal(t, map[string][]string{"catastrophizing": {"最坏"}}, result.PatternsFound)
}

func TestScan_WholeWordBoundary(t *testing.T) {
	set, err := Compile(Definition{
		"breathing_exercise": {"en": {"breathing exercise"}},
	})
	require.NoError(t, err)

	// The stored phrase is singular; the plural in the text does not end
	// on a word boundary after "exercise", so matching is literal, not
	// stemmed.
	result := set.Scan([]conversation.Message{
		userMsg("Let's try some breathing exercises to help you calm down"),
	})
	assert.False(t, result.HasPatterns)
	assert.Empty(t, result.PatternsFound)

	result = set.Scan([]conversation.Message{
		userMsg("the breathing exercise helped a lot"),
	})
	assert.True(t, result.HasPatterns)
	assert.Equal(t, []string{"breathing exercise"}, result.PatternsFound["breathing_exercise"])
}

func TestScan_NoSubstringMatchForLatin(t *testing.T) {
	set, err := Compile(Definition{
		"anger": {"en": {"rage"}},
	})
	require.NoError(t, err)

	result := set.Scan([]conversation.Message{userMsg("I put it in storage last week")})
	assert.False(t, result.HasPatterns)
}

func TestScan_AssistantTurnsExcluded(t *testing.T) {
	set, err := Compile(Definition{
		"avoidance": {"en": {"avoid"}},
	})
	require.NoError(t, err)

	result := set.Scan([]conversation.Message{
		{Role: conversation.RoleAssistant, Content: "Do you avoid conflict?"},
	})
	assert.False(t, result.HasPatterns)

	result = set.Scan([]conversation.Message{
		{Role: conversation.RoleAssistant, Content: "Tell me more."},
		userMsg("I avoid confrontation whenever I can"),
	})
	assert.True(t, result.HasPatterns)
}

func TestScan_DuplicatesRecordedOnce(t *testing.T) {
	set, err := Compile(Definition{
		"self_criticism": {
			"en":    {"worthless", "failure"},
			"en-gb": {"worthless"},
		},
	})
	require.NoError(t, err)

	result := set.Scan([]conversation.Message{
		userMsg("I feel worthless, like a failure, totally worthless"),
	})
	assert.Equal(t, []string{"worthless", "failure"}, result.PatternsFound["self_criticism"])
}

func TestScan_Deterministic(t *testing.T) {
	set, err := Compile(Definition{
		"catastrophizing": {"en": {"worst case", "disaster"}, "cn": {"最坏"}},
		"rumination":      {"en": {"can't stop thinking"}},
	})
	require.NoError(t, err)

	messages := []conversation.Message{
		userMsg("It will be a disaster, the worst case always happens, 最坏的情况"),
		userMsg("I can't stop thinking about it"),
	}

	first := set.Scan(messages)
	second := set.Scan(messages)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Scan() not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}

	assert.Equal(t, []string{"最坏", "worst case", "disaster"}, first.PatternsFound["catastrophizing"])
	assert.Equal(t, []string{"catastrophizing", "rumination"}, first.Categories())
}

func TestScan_MalformedTextNeverFails(t *testing.T) {
	set, err := Compile(Definition{"cat": {"en": {"word"}}})
	require.NoError(t, err)

	// Invalid UTF-8 and control characters still scan without panicking.
	result := set.Scan([]conversation.Message{
		userMsg(string([]byte{0xff, 0xfe, 0x00}) + " word \x01"),
	})
	assert.True(t, result.HasPatterns)
}

func TestUserText(t *testing.T) {
	got := UserText([]conversation.Message{
		userMsg("Hello THERE"),
		{Role: conversation.RoleAssistant, Content: "hi"},
		userMsg("Again"),
	})
	assert.Equal(t, "hello there again", got)
}

package framework

import (
	"github.com/fyrsmithlabs/psyched/internal/llm"
	"github.com/fyrsmithlabs/psyched/internal/pattern"
)

// Built-in framework names.
const (
	NameCBT        = "cbt"
	NameJungian    = "jungian"
	NameNarrative  = "narrative"
	NameAttachment = "attachment"
	NameIFS        = "ifs"
)

// NewCBT builds the cognitive-behavioral detector.
func NewCBT(client llm.Client) *HybridDetector {
	return NewHybridDetector(Profile{
		Name: NameCBT,
		Patterns: pattern.Definition{
			"catastrophizing": {
				"en": {"worst case", "disaster", "everything will fall apart", "it's hopeless", "ruined"},
				"cn": {"最坏", "完蛋", "灾难"},
			},
			"all_or_nothing": {
				"en": {"always", "never", "everyone", "no one", "completely", "totally"},
				"cn": {"总是", "从来不", "所有人"},
			},
			"self_criticism": {
				"en": {"i'm worthless", "i'm a failure", "i'm not good enough", "i hate myself", "stupid of me"},
				"cn": {"我没用", "我很失败", "我不够好"},
			},
			"rumination": {
				"en": {"can't stop thinking", "keep going over", "replaying", "stuck in my head"},
				"cn": {"反复想", "想个不停"},
			},
			"avoidance": {
				"en": {"i avoid", "i can't face", "putting it off", "i keep cancelling"},
				"cn": {"逃避", "不敢面对"},
			},
		},
		ElementTypes: []string{"cognitive_distortion", "automatic_thought", "core_belief", "behavioral_pattern"},
		PromptIntro: "Apply cognitive-behavioral therapy concepts: identify cognitive distortions, " +
			"automatic thoughts, core beliefs, and maintaining behaviors in the user's speech.",
	}, client)
}

// NewJungian builds the Jungian/archetypal detector.
func NewJungian(client llm.Client) *HybridDetector {
	return NewHybridDetector(Profile{
		Name: NameJungian,
		Patterns: pattern.Definition{
			"shadow": {
				"en": {"part of me i hate", "dark side", "not like me at all", "i would never admit"},
				"cn": {"阴暗面", "不愿承认"},
			},
			"persona": {
				"en": {"pretending", "wearing a mask", "who they expect me to be", "keeping up appearances"},
				"cn": {"假装", "面具"},
			},
			"dreams": {
				"en": {"i dreamed", "recurring dream", "in my dream", "nightmare"},
				"cn": {"梦见", "做梦"},
			},
			"individuation": {
				"en": {"who i really am", "true self", "becoming myself", "finding myself"},
				"cn": {"真正的自己", "找到自我"},
			},
		},
		ElementTypes: []string{"archetype", "shadow_content", "persona_conflict", "symbol"},
		PromptIntro: "Apply Jungian analysis: identify archetypal themes, shadow material, persona " +
			"conflicts, and symbolic imagery (including dreams) in the user's speech.",
	}, client)
}

// NewNarrative builds the narrative-identity detector.
func NewNarrative(client llm.Client) *HybridDetector {
	return NewHybridDetector(Profile{
		Name: NameNarrative,
		Patterns: pattern.Definition{
			"turning_point": {
				"en": {"everything changed", "turning point", "that's when", "ever since then"},
				"cn": {"转折点", "从那以后"},
			},
			"redemption": {
				"en": {"came out stronger", "learned from it", "grew from", "silver lining"},
				"cn": {"因祸得福", "成长了"},
			},
			"contamination": {
				"en": {"it was all downhill", "ruined everything", "never recovered", "since then nothing"},
				"cn": {"每况愈下", "再也没有"},
			},
			"agency": {
				"en": {"i made it happen", "took control", "it was my choice", "i had no choice"},
				"cn": {"我的选择", "身不由己"},
			},
		},
		ElementTypes: []string{"narrative_theme", "turning_point", "self_story", "agency_stance"},
		PromptIntro: "Apply narrative psychology: identify the user's self-story, turning points, " +
			"redemption or contamination sequences, and their stance on personal agency.",
	}, client)
}

// NewAttachment builds the attachment-theory detector.
func NewAttachment(client llm.Client) *HybridDetector {
	return NewHybridDetector(Profile{
		Name: NameAttachment,
		Patterns: pattern.Definition{
			"abandonment_fear": {
				"en": {"afraid they'll leave", "everyone leaves", "can't be alone", "they'll abandon me"},
				"cn": {"怕被抛弃", "离开我"},
			},
			"clinging": {
				"en": {"need constant reassurance", "check their phone", "text them all day", "can't let go"},
				"cn": {"离不开", "不停确认"},
			},
			"distancing": {
				"en": {"keep people at arm's length", "don't need anyone", "better off alone", "walls up"},
				"cn": {"保持距离", "不需要别人"},
			},
			"trust": {
				"en": {"hard to trust", "can't rely on", "let me down", "i feel safe with"},
				"cn": {"难以信任", "靠不住"},
			},
		},
		ElementTypes: []string{"attachment_style", "relational_pattern", "attachment_injury"},
		PromptIntro: "Apply attachment theory: identify the user's apparent attachment style " +
			"(secure, anxious, avoidant, disorganized), relational patterns, and attachment injuries. " +
			"Record the style in the attributes map under \"style\".",
	}, client)
}

// NewIFS builds the internal-family-systems detector.
func NewIFS(client llm.Client) *HybridDetector {
	return NewHybridDetector(Profile{
		Name: NameIFS,
		Patterns: pattern.Definition{
			"parts_language": {
				"en": {"part of me", "one side of me", "a voice in me", "torn between"},
				"cn": {"一部分的我", "内心有个声音"},
			},
			"exile": {
				"en": {"buried it", "locked away", "the hurt child", "old wound", "never dealt with"},
				"cn": {"埋藏", "旧伤"},
			},
			"manager": {
				"en": {"keep everything under control", "have to be perfect", "plan for everything"},
				"cn": {"必须控制", "必须完美"},
			},
			"firefighter": {
				"en": {"numb it", "drink to forget", "binge", "shut it all out"},
				"cn": {"麻痹自己", "借酒消愁"},
			},
		},
		ElementTypes: []string{"exile", "manager", "firefighter", "self_energy"},
		PromptIntro: "Apply internal family systems: identify exiles, managers, firefighters, and " +
			"moments of Self-energy in the user's speech, using their own parts language as evidence.",
	}, client)
}

// BuiltinDetectors returns the five built-in framework detectors sharing
// one model client. The slice order is the default registration order.
func BuiltinDetectors(client llm.Client) []*HybridDetector {
	return []*HybridDetector{
		NewCBT(client),
		NewJungian(client),
		NewNarrative(client),
		NewAttachment(client),
		NewIFS(client),
	}
}

// BuiltinNames returns the built-in framework names in default
// registration order.
func BuiltinNames() []string {
	return []string{NameCBT, NameJungian, NameNarrative, NameAttachment, NameIFS}
}

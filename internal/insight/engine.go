package insight

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/psyched/internal/framework"
)

// Tunable constants for insight derivation.
const (
	// minConfidence discards low-confidence insights rather than
	// reporting noise.
	minConfidence = 0.3
	// contradictionScale reflects the interpretive uncertainty of
	// calling two readings incompatible.
	contradictionScale = 0.7
	// reinforcementBonus is added per corroborating framework beyond
	// the second.
	reinforcementBonus = 0.05
	// overlapJaccard is the evidence token-overlap threshold for two
	// elements to count as the same underlying content.
	overlapJaccard = 0.5
)

// opposition declares two element readings as incompatible. An element
// matches a side when its subtype or type equals the named kind.
type opposition struct {
	frameworkA, kindA string
	frameworkB, kindB string
	minIntensityB     float64
}

// oppositions is the built-in contradiction rule table.
var oppositions = []opposition{
	{frameworkA: framework.NameAttachment, kindA: "secure", frameworkB: framework.NameIFS, kindB: "exile", minIntensityB: 0.6},
	{frameworkA: framework.NameNarrative, kindA: "redemption", frameworkB: framework.NameCBT, kindB: "catastrophizing"},
}

// Engine derives insights from assembled per-framework analyses.
type Engine struct{}

// NewEngine creates an insight engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Detect produces the insights for one completed orchestration run.
// themes is the accumulated per-framework theme history; it may be nil,
// which disables recurring-pattern detection. Results are sorted by
// confidence descending, then by type and description for determinism.
func (e *Engine) Detect(frameworks map[string]framework.Analysis, themes map[string][]ThemeObservation) []Insight {
	names := analyzedNames(frameworks)

	var insights []Insight
	insights = append(insights, e.overlaps(names, frameworks)...)
	insights = append(insights, e.contradictions(names, frameworks)...)
	insights = append(insights, e.reinforcements(names, frameworks)...)
	insights = append(insights, e.recurringPatterns(themes)...)

	filtered := insights[:0]
	for _, ins := range insights {
		if ins.Confidence >= minConfidence {
			filtered = append(filtered, ins)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Confidence != filtered[j].Confidence {
			return filtered[i].Confidence > filtered[j].Confidence
		}
		if filtered[i].Type != filtered[j].Type {
			return filtered[i].Type < filtered[j].Type
		}
		return filtered[i].Description < filtered[j].Description
	})
	return filtered
}

// analyzedNames returns the sorted names of frameworks that completed
// analysis with at least one element.
func analyzedNames(frameworks map[string]framework.Analysis) []string {
	var names []string
	for name, a := range frameworks {
		if a.Analyzed && len(a.Elements) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// overlaps finds element pairs across frameworks referring to the same
// underlying content, one insight per framework pair.
func (e *Engine) overlaps(names []string, frameworks map[string]framework.Analysis) []Insight {
	var insights []Insight

	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			a, b := frameworks[names[i]], frameworks[names[j]]

			var best *Insight
			for _, ea := range a.Elements {
				for _, eb := range b.Elements {
					if !sameContent(ea, eb) {
						continue
					}
					conf := (ea.Confidence + eb.Confidence) / 2
					if best != nil && conf <= best.Confidence {
						continue
					}
					best = &Insight{
						ID:                 uuid.New().String(),
						Type:               TypeOverlap,
						FrameworksInvolved: []string{names[i], names[j]},
						Description: fmt.Sprintf("%s (%s) and %s (%s) detected the same content",
							names[i], ea.Type, names[j], eb.Type),
						Confidence: conf,
						Evidence:   []string{ea.Evidence, eb.Evidence},
					}
				}
			}
			if best != nil {
				insights = append(insights, *best)
			}
		}
	}
	return insights
}

// sameContent reports whether two elements refer to the same underlying
// content: same originating message, or significant lexical overlap of
// their evidence.
func sameContent(a, b framework.Element) bool {
	if a.FirstDetectedMessage != nil && b.FirstDetectedMessage != nil &&
		*a.FirstDetectedMessage == *b.FirstDetectedMessage {
		return true
	}
	return jaccard(tokens(a.Evidence), tokens(b.Evidence)) >= overlapJaccard
}

// contradictions applies the opposition rule table across framework pairs.
func (e *Engine) contradictions(names []string, frameworks map[string]framework.Analysis) []Insight {
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	var insights []Insight
	for _, rule := range oppositions {
		if !present[rule.frameworkA] || !present[rule.frameworkB] {
			continue
		}
		ea, okA := findKind(frameworks[rule.frameworkA], rule.kindA, 0)
		eb, okB := findKind(frameworks[rule.frameworkB], rule.kindB, rule.minIntensityB)
		if !okA || !okB {
			continue
		}

		conf := contradictionScale * (ea.Confidence + eb.Confidence) / 2
		insights = append(insights, Insight{
			ID:                 uuid.New().String(),
			Type:               TypeContradiction,
			FrameworksInvolved: []string{rule.frameworkA, rule.frameworkB},
			Description: fmt.Sprintf("%s reads %q while %s reads %q in the same window",
				rule.frameworkA, rule.kindA, rule.frameworkB, rule.kindB),
			Confidence:           conf,
			Evidence:             []string{ea.Evidence, eb.Evidence},
			TherapeuticRelevance: "the tension between these readings may itself be worth exploring",
		})
	}
	return insights
}

// findKind returns the highest-confidence element of an analysis whose
// subtype or type matches kind with intensity >= minIntensity.
func findKind(a framework.Analysis, kind string, minIntensity float64) (framework.Element, bool) {
	var best framework.Element
	found := false
	for _, e := range a.Elements {
		if e.Subtype != kind && e.Type != kind {
			continue
		}
		if e.Intensity < minIntensity {
			continue
		}
		if !found || e.Confidence > best.Confidence {
			best = e
			found = true
		}
	}
	return best, found
}

// reinforcements finds pattern categories shared by two or more analyzed
// frameworks. Confidence is the mean of the contributing frameworks'
// scores boosted per corroborating framework beyond the second, capped
// at 1.0.
func (e *Engine) reinforcements(names []string, frameworks map[string]framework.Analysis) []Insight {
	byCategory := make(map[string][]string)
	for _, name := range names {
		for cat := range frameworks[name].PatternsFound {
			byCategory[cat] = append(byCategory[cat], name)
		}
	}

	cats := make([]string, 0, len(byCategory))
	for cat, members := range byCategory {
		if len(members) >= 2 {
			cats = append(cats, cat)
		}
	}
	sort.Strings(cats)

	var insights []Insight
	for _, cat := range cats {
		members := byCategory[cat]
		var sum float64
		for _, name := range members {
			sum += frameworks[name].ConfidenceScore
		}
		conf := sum/float64(len(members)) + reinforcementBonus*float64(len(members)-2)
		if conf > 1 {
			conf = 1
		}

		insights = append(insights, Insight{
			ID:                 uuid.New().String(),
			Type:               TypeReinforcement,
			FrameworksInvolved: members,
			Description: fmt.Sprintf("theme %q recurs across %d frameworks",
				cat, len(members)),
			Confidence:           conf,
			TherapeuticRelevance: "multiple lenses converging on one theme strengthens its salience",
		})
	}
	return insights
}

// recurringPatterns reports themes seen at two or more distinct message
// indices within a single framework's history.
func (e *Engine) recurringPatterns(themes map[string][]ThemeObservation) []Insight {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)

	var insights []Insight
	for _, name := range names {
		indexes := make(map[string]map[int]bool)
		for _, obs := range themes[name] {
			if indexes[obs.Theme] == nil {
				indexes[obs.Theme] = make(map[int]bool)
			}
			indexes[obs.Theme][obs.MessageIndex] = true
		}

		cats := make([]string, 0, len(indexes))
		for cat := range indexes {
			cats = append(cats, cat)
		}
		sort.Strings(cats)

		for _, cat := range cats {
			n := len(indexes[cat])
			if n < 2 {
				continue
			}
			conf := 0.3 + 0.1*float64(n-1)
			if conf > 0.9 {
				conf = 0.9
			}
			insights = append(insights, Insight{
				ID:                 uuid.New().String(),
				Type:               TypePattern,
				FrameworksInvolved: []string{name},
				Description: fmt.Sprintf("theme %q recurs at %d points in the conversation (%s)",
					cat, n, name),
				Confidence: conf,
			})
		}
	}
	return insights
}

// tokens lowercases and splits text on non-alphanumeric runes.
func tokens(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r < 0x80
	}) {
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

// jaccard computes set overlap over union size.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for tok := range a {
		if b[tok] {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

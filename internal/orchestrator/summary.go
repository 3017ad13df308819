package orchestrator

import (
	"sort"

	"github.com/fyrsmithlabs/psyched/internal/framework"
	"github.com/fyrsmithlabs/psyched/internal/insight"
)

// dominantThemeCount is how many top pattern categories the summary
// reports.
const dominantThemeCount = 3

// buildSummary folds the settled per-framework results into counts and
// headlines. All derived orderings are deterministic: ties break
// alphabetically.
func buildSummary(results map[string]framework.Analysis, insights []insight.Insight) Summary {
	s := Summary{InsightCount: len(insights)}

	var bestName string
	var bestScore float64
	themeCounts := make(map[string]int)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		analysis := results[name]
		if analysis.Analyzed {
			s.FrameworksAnalyzed++
		}
		if len(analysis.Elements) > 0 {
			s.FrameworksWithDetections++
			s.TotalElements += len(analysis.Elements)
			if bestName == "" || analysis.ConfidenceScore > bestScore {
				bestName = name
				bestScore = analysis.ConfidenceScore
			}
		}
		for category, keywords := range analysis.PatternsFound {
			themeCounts[category] += len(keywords)
		}
	}

	s.HighestConfidenceFramework = bestName
	s.DominantThemes = dominantThemes(themeCounts)
	return s
}

// dominantThemes returns the top categories by matched-keyword count.
func dominantThemes(counts map[string]int) []string {
	if len(counts) == 0 {
		return nil
	}
	themes := make([]string, 0, len(counts))
	for theme := range counts {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return themes[i] < themes[j]
	})
	if len(themes) > dominantThemeCount {
		themes = themes[:dominantThemeCount]
	}
	return themes
}

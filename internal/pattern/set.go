package pattern

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Set is a compiled, immutable pattern set. Categories and languages are
// held in sorted order so that iteration, and therefore ScanResult
// contents, are deterministic.
type Set struct {
	categories []compiledCategory
}

type compiledCategory struct {
	name     string
	keywords []compiledKeyword
}

type compiledKeyword struct {
	// text is the lowercased keyword. CJK keywords are matched by plain
	// substring containment; all others via the word-boundary regex.
	text string
	re   *regexp.Regexp
}

// Compile builds a Set from a raw Definition. Keywords are lowercased at
// construction. Empty category names, empty language tags, empty keywords,
// and definitions with no keywords at all fail with ErrPatternCompile.
func Compile(def Definition) (*Set, error) {
	if len(def) == 0 {
		return nil, fmt.Errorf("%w: empty definition", ErrPatternCompile)
	}

	catNames := make([]string, 0, len(def))
	for name := range def {
		if name == "" {
			return nil, fmt.Errorf("%w: empty category name", ErrPatternCompile)
		}
		catNames = append(catNames, name)
	}
	sort.Strings(catNames)

	set := &Set{categories: make([]compiledCategory, 0, len(catNames))}
	total := 0

	for _, catName := range catNames {
		langs := def[catName]

		langTags := make([]string, 0, len(langs))
		for tag := range langs {
			if tag == "" {
				return nil, fmt.Errorf("%w: category %q has empty language tag", ErrPatternCompile, catName)
			}
			langTags = append(langTags, tag)
		}
		sort.Strings(langTags)

		cat := compiledCategory{name: catName}
		for _, tag := range langTags {
			for _, kw := range langs[tag] {
				if strings.TrimSpace(kw) == "" {
					return nil, fmt.Errorf("%w: category %q language %q has empty keyword", ErrPatternCompile, catName, tag)
				}
				compiled, err := compileKeyword(strings.ToLower(kw))
				if err != nil {
					return nil, fmt.Errorf("%w: category %q keyword %q: %v", ErrPatternCompile, catName, kw, err)
				}
				cat.keywords = append(cat.keywords, compiled)
				total++
			}
		}
		set.categories = append(set.categories, cat)
	}

	if total == 0 {
		return nil, fmt.Errorf("%w: definition contains no keywords", ErrPatternCompile)
	}
	return set, nil
}

// compileKeyword prepares one lowercased keyword for matching. CJK text
// has no token boundaries, so keywords containing CJK codepoints are
// matched by substring containment instead of a word-boundary regex.
func compileKeyword(kw string) (compiledKeyword, error) {
	if containsCJK(kw) {
		return compiledKeyword{text: kw}, nil
	}
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	if err != nil {
		return compiledKeyword{}, err
	}
	return compiledKeyword{text: kw, re: re}, nil
}

// containsCJK reports whether s contains at least one CJK codepoint.
func containsCJK(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) ||
			unicode.Is(unicode.Hiragana, r) ||
			unicode.Is(unicode.Katakana, r) ||
			unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

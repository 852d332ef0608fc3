package classify

import "github.com/ppiankov/assertlens/internal/model"

// patternGroup is one category and the expressions that select it
type patternGroup struct {
	category model.Category
	patterns []string
}

// defaultGroups is evaluated top to bottom; the first group with a hit wins.
// A string that matches both immediate and temporal expressions is immediate.
var defaultGroups = []patternGroup{
	{
		category: model.CategoryImmediate,
		patterns: []string{
			`immediate\s+assert`,
			`assert\s+immediate`,
			`assert\s*\(\s*.*\s*\)\s*;`,
			`cover\s*\(\s*.*\s*\)\s*;`,
			`assume\s*\(\s*.*\s*\)\s*;`,
		},
	},
	{
		category: model.CategoryConcurrent,
		patterns: []string{
			`assert\s+property`,
			`cover\s+property`,
			`assume\s+property`,
			`assert\s+final`,
			`cover\s+final`,
			`assume\s+final`,
			`@\s*\(\s*posedge|negedge`,
			`always\s+@`,
			`always_comb|always_ff|always_latch`,
		},
	},
	{
		category: model.CategoryTemporal,
		patterns: []string{
			`##\d+`,
			`\[\s*\d+\s*:\s*\d+\s*\]`,
			`within|throughout|until|before|after`,
			`##\[`,
			`##\*`,
			`->`,
			`\|=>`, // escaped: a bare |=> is an empty alternation and matches everything
			`overlap|non-overlap`,
			`first_match`,
			`not\s*\(\s*.*\s*\)`,
			`and|or|intersect`,
		},
	},
	{
		category: model.CategoryFunctional,
		patterns: []string{
			`onehot`,
			`onehot0`,
			`zeroone`,
			`range`,
			`stable`,
			`changed`,
			`rose|fell|stable`,
			`past`,
			`prev`,
			`unique|unique0`,
			`countones`,
			`isunknown`,
		},
	},
}

// keywordFallback applies when no pattern group matched
type keywordFallback struct {
	category model.Category
	keywords []string
}

var defaultFallbacks = []keywordFallback{
	{category: model.CategoryConcurrent, keywords: []string{"property", "sequence"}},
	{category: model.CategoryImmediate, keywords: []string{"immediate", "assert("}},
	{category: model.CategoryTemporal, keywords: []string{"##", "->", "|=>"}},
}

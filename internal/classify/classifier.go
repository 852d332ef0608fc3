// Package classify assigns assertion statements to semantic categories using
// ordered lexical pattern groups. It does not parse the assertion language.
package classify

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/assertlens/internal/model"
)

// Classifier maps assertion source text to a category.
// It holds only compiled patterns and is safe for concurrent use.
type Classifier struct {
	groups    []compiledGroup
	fallbacks []compiledFallback
}

type compiledGroup struct {
	category model.Category
	patterns []*regexp.Regexp
}

// compiledFallback matches keywords literally, with the same case folding
// as the pattern groups
type compiledFallback struct {
	category model.Category
	keywords []string
	matchers []*regexp.Regexp
}

// Decision explains how a category was chosen
type Decision struct {
	Category model.Category `json:"category"`
	Rule     string         `json:"rule,omitempty"`  // "pattern" or "keyword", empty for unknown
	Match    string         `json:"match,omitempty"` // The pattern or keyword that decided
}

func (d Decision) String() string {
	if d.Rule == "" {
		return string(d.Category)
	}
	return fmt.Sprintf("%s (%s %q)", d.Category, d.Rule, d.Match)
}

// NewClassifier creates a classifier with the built-in pattern groups
func NewClassifier() *Classifier {
	c := &Classifier{
		groups:    make([]compiledGroup, 0, len(defaultGroups)),
		fallbacks: make([]compiledFallback, 0, len(defaultFallbacks)),
	}

	for _, g := range defaultGroups {
		cg := compiledGroup{category: g.category}
		for _, p := range g.patterns {
			cg.patterns = append(cg.patterns, regexp.MustCompile(`(?i)`+p))
		}
		c.groups = append(c.groups, cg)
	}

	for _, fb := range defaultFallbacks {
		cf := compiledFallback{category: fb.category, keywords: fb.keywords}
		for _, kw := range fb.keywords {
			cf.matchers = append(cf.matchers, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(kw)))
		}
		c.fallbacks = append(c.fallbacks, cf)
	}

	return c
}

// Classify returns the category of an assertion. It never fails; text that
// matches nothing is model.CategoryUnknown.
func (c *Classifier) Classify(code string) model.Category {
	return c.Explain(code).Category
}

// Explain classifies an assertion and reports the deciding rule
func (c *Classifier) Explain(code string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(code))

	for _, g := range c.groups {
		for _, re := range g.patterns {
			if re.MatchString(normalized) {
				return Decision{
					Category: g.category,
					Rule:     "pattern",
					Match:    strings.TrimPrefix(re.String(), "(?i)"),
				}
			}
		}
	}

	for _, fb := range c.fallbacks {
		for i, re := range fb.matchers {
			if re.MatchString(normalized) {
				return Decision{Category: fb.category, Rule: "keyword", Match: fb.keywords[i]}
			}
		}
	}

	return Decision{Category: model.CategoryUnknown}
}

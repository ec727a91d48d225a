// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/ddpack

package ddpack

import (
	"fmt"
	"strings"

	"github.com/woozymasta/pathrules"
)

// sourceMatcher holds compiled source selection rules.
type sourceMatcher struct {
	matcher *pathrules.Matcher
}

// newSourceMatcher compiles source selection rules. Nil matcher includes everything.
func newSourceMatcher(rules []pathrules.Rule, opts pathrules.MatcherOptions) (*sourceMatcher, error) {
	rules = normalizeSourceRules(rules)
	if len(rules) == 0 {
		return nil, nil
	}

	matcher, err := pathrules.NewMatcher(rules, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: compile rules: %w", ErrInvalidSourceRules, err)
	}

	return &sourceMatcher{matcher: matcher}, nil
}

// normalizeSourceRules normalizes rule patterns to slash form and drops empty patterns.
func normalizeSourceRules(rules []pathrules.Rule) []pathrules.Rule {
	normalized := make([]pathrules.Rule, 0, len(rules))
	for _, rule := range rules {
		pattern := normalizeRulePath(rule.Pattern)
		if pattern == "" {
			continue
		}

		normalized = append(normalized, pathrules.Rule{
			Action:  rule.Action,
			Pattern: pattern,
		})
	}

	return normalized
}

// Match reports whether a source file name is selected for packing.
func (m *sourceMatcher) Match(name string) bool {
	if m == nil || m.matcher == nil {
		return true
	}

	candidate := normalizeRulePath(name)
	if candidate == "" {
		return false
	}

	return m.matcher.Included(candidate, false)
}

// normalizeRulePath trims spaces, converts "\" to "/" and drops leading "./".
func normalizeRulePath(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.ReplaceAll(raw, `\`, `/`)
	return strings.TrimPrefix(raw, "./")
}

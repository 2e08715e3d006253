// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"html"
	"net/url"
	"regexp"
	"strings"
)

// =============================================================================
// DIRECTIVE RULES
// =============================================================================

// directiveRule rewrites one inline directive. The first capture group of
// pattern is the directive argument. Arguments never contain a bracket, so
// an unbalanced opener is left verbatim instead of swallowing the next
// directive.
type directiveRule struct {
	name    string
	pattern *regexp.Regexp
	expand  func(e *DirectiveExpander, arg string) string
}

var directiveRules = []directiveRule{
	{
		name:    "SHOW_IMAGE",
		pattern: regexp.MustCompile(`\[SHOW_IMAGE:([^\]\[]*)\]`),
		expand:  (*DirectiveExpander).imageBlock,
	},
}

// =============================================================================
// EXPANDER
// =============================================================================

// DirectiveExpander replaces inline directives with markup.
type DirectiveExpander struct {
	// Root is prepended to image paths. An empty root yields "/path".
	Root string
}

// NewDirectiveExpander creates an expander resolving images under root.
func NewDirectiveExpander(root string) *DirectiveExpander {
	return &DirectiveExpander{Root: root}
}

// Expand replaces each well-formed directive occurrence in text. Directives
// with an empty argument are left exactly as written.
func (e *DirectiveExpander) Expand(text string) string {
	for _, rule := range directiveRules {
		if !strings.Contains(text, "["+rule.name+":") {
			continue
		}
		text = rule.pattern.ReplaceAllStringFunc(text, func(match string) string {
			sub := rule.pattern.FindStringSubmatch(match)
			arg := strings.TrimSpace(sub[1])
			if arg == "" {
				return match
			}
			return rule.expand(e, arg)
		})
	}
	return text
}

// ResolveImage joins root and path with exactly one slash. Each path
// segment is percent-encoded; root is used as written.
func (e *DirectiveExpander) ResolveImage(path string) string {
	root := ""
	if e != nil {
		root = strings.TrimRight(e.Root, "/")
	}
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return root + "/" + strings.Join(segments, "/")
}

func (e *DirectiveExpander) imageBlock(path string) string {
	return `<div class="answer-image"><img src="` + html.EscapeString(e.ResolveImage(path)) +
		`" alt="` + html.EscapeString(path) + `"></div>`
}

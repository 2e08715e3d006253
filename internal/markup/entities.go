// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "strings"

var basicEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
)

// LooksEscaped reports whether text appears to be markup that was
// entity-encoded once too often.
func LooksEscaped(text string) bool {
	return strings.Contains(text, "&lt;")
}

// DecodeBasicEntities reverses &lt; &gt; and &quot; when text looks
// escaped. Anything else, including &amp;, is left untouched.
func DecodeBasicEntities(text string) string {
	if !LooksEscaped(text) {
		return text
	}
	return basicEntities.Replace(text)
}

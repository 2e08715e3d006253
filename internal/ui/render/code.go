// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// GuessLanguage names the language of an unlabelled code block so glamour
// can highlight it. It returns "" when chroma has no confident guess.
func GuessLanguage(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}

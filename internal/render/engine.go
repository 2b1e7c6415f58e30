// Package render expands {{NAME}} placeholders in template bodies.
//
// Expansion is two-phase: derived values (the www composition blocks)
// are synthesized before the domain is substituted and themselves
// contain placeholder tokens, so a second full pass resolves what the
// first pass introduced. The fixed point is bounded at two passes; a
// third required pass means a derived value cycled and is reported as
// a render defect instead of looping.
package render

import (
	"fmt"
	"regexp"

	"github.com/ovanta/sitectl/internal/errors"
)

// tokenRe matches a placeholder token: double-brace wrapped uppercase
// identifier, e.g. {{DOMAIN}}.
var tokenRe = regexp.MustCompile(`\{\{[A-Z][A-Z0-9_]*\}\}`)

// maxPasses bounds the expansion fixed point. Derived values may
// introduce tokens once; anything deeper is a defect.
const maxPasses = 2

// Expand performs a single substitution pass: every token whose name
// is present in vars becomes its value, every absent token becomes the
// empty string. Replacement text is not rescanned within the pass.
func Expand(body string, vars map[string]string) string {
	return tokenRe.ReplaceAllStringFunc(body, func(token string) string {
		name := token[2 : len(token)-2]
		return vars[name]
	})
}

// Render expands body against vars until no tokens remain, in at most
// maxPasses passes. Output of a successful Render contains zero
// placeholder tokens. Tokens surviving the final pass indicate a
// derived value that introduced further placeholders on the second
// pass; Render reports this as a render-incomplete error rather than
// expanding unboundedly.
func Render(body string, vars map[string]string) (string, error) {
	out := body
	for pass := 0; pass < maxPasses; pass++ {
		out = Expand(out, vars)
		if !tokenRe.MatchString(out) {
			return out, nil
		}
	}
	token := tokenRe.FindString(out)
	return "", &errors.SiteError{
		Code:    errors.ErrCodeRender,
		Message: fmt.Sprintf("placeholder %s unresolved after %d passes", token, maxPasses),
	}
}

// HasTokens reports whether text still contains placeholder syntax.
func HasTokens(text string) bool {
	return tokenRe.MatchString(text)
}

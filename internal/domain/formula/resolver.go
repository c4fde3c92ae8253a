// Package formula resolves [KPI:...] references inside calculation
// equations. It only substitutes values into the equation text; evaluating
// the resulting arithmetic expression is the caller's job.
package formula

import (
	"regexp"
	"strings"
)

// Reference is a single [KPI:<payload>] token found in an equation. The
// payload is either a KPI id (canonical UUID) or a KPI name.
type Reference struct {
	Identifier    string `json:"identifier"`
	IsID          bool   `json:"isId"`
	OriginalMatch string `json:"originalMatch"`
}

var (
	referencePattern = regexp.MustCompile(`\[KPI:([^\]]+)\]`)
	uuidPattern      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// ExtractReferences returns every well-formed reference token in equation,
// left to right, duplicates included.
func ExtractReferences(equation string) []Reference {
	matches := referencePattern.FindAllStringSubmatch(equation, -1)
	if len(matches) == 0 {
		return nil
	}
	refs := make([]Reference, 0, len(matches))
	for _, match := range matches {
		payload := match[1]
		refs = append(refs, Reference{
			Identifier:    payload,
			IsID:          uuidPattern.MatchString(payload),
			OriginalMatch: match[0],
		})
	}
	return refs
}

// Substitute replaces each reference token with the value looked up by its
// identifier. A nil value substitutes the literal "0"; an identifier absent
// from the map leaves its token in place unchanged.
func Substitute(equation string, values map[string]*string) string {
	out := equation
	for _, ref := range ExtractReferences(equation) {
		value, ok := values[ref.Identifier]
		if !ok {
			continue
		}
		replacement := "0"
		if value != nil {
			replacement = *value
		}
		out = strings.ReplaceAll(out, ref.OriginalMatch, replacement)
	}
	return out
}

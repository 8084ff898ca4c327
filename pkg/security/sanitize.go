// Package security holds the one deliberate exception to parameterized
// queries: SET <scope> <name> = '<value>' does not accept bound
// parameters, so the name is validated and the value textually escaped
// here. Nothing else in the codebase interpolates user input.
package security

import (
	"strings"

	"github.com/workgrid/studio/pkg/domain"
)

// ValidateIdentifier accepts only non-empty names built from ASCII
// letters, digits and underscore.
func ValidateIdentifier(name string) error {
	if name == "" {
		return domain.NewErrInvalidIdentifier(name)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return domain.NewErrInvalidIdentifier(name)
	}
	return nil
}

// EscapeValue escapes a string for interpolation inside a single-quoted
// SQL literal: backslash is doubled, single quote becomes ''.
func EscapeValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `''`)
}

// QuoteIdentifier wraps a schema or table name in backticks, doubling
// any embedded backtick.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

package search

import (
	"fmt"
	"regexp"
)

// The filter grammar is deliberately minimal: a single `field eq 'value'`
// clause, the only form the workers' filtered search emits.
var filterPattern = regexp.MustCompile(`^\w+ eq '[^']*'$`)

// ValidateFilter reports whether expr is a supported filter expression. The
// empty expression (no filtering) is valid.
func ValidateFilter(expr string) error {
	if expr == "" {
		return nil
	}

	if !filterPattern.MatchString(expr) {
		return fmt.Errorf("unsupported filter expression %q: expected field eq 'value'", expr)
	}

	return nil
}

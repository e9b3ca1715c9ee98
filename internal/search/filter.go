package search

import (
	"fmt"
	"strings"
)

// OData-style filter expression helpers for the managed index. Single quotes
// inside string literals are doubled per the OData escaping rule.

func quote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// Eq renders an exact string match: field eq 'value'.
func Eq(field, value string) string {
	return fmt.Sprintf("%s eq %s", field, quote(value))
}

// EqInt renders an exact numeric match: field eq N.
func EqInt(field string, value int) string {
	return fmt.Sprintf("%s eq %d", field, value)
}

// CollectionAny renders a collection membership test for a numeric value:
// field/any(x: x eq N).
func CollectionAny(field string, value int) string {
	return fmt.Sprintf("%s/any(x: x eq %d)", field, value)
}

// CollectionAnyString renders a collection membership test for a string:
// field/any(x: x eq 'value').
func CollectionAnyString(field, value string) string {
	return fmt.Sprintf("%s/any(x: x eq %s)", field, quote(value))
}

// And joins non-empty clauses with " and ".
func And(clauses ...string) string {
	return join(clauses, " and ")
}

// Or joins non-empty clauses with " or " and parenthesizes the result when
// more than one clause survives.
func Or(clauses ...string) string {
	kept := keep(clauses)
	if len(kept) <= 1 {
		return join(kept, "")
	}
	return "(" + strings.Join(kept, " or ") + ")"
}

// GradeWindow builds the grade-level window [grade-1, grade, grade+1] as an
// OR of collection membership tests. Grades below 1 are clipped.
func GradeWindow(field string, grade int) string {
	var clauses []string
	for g := grade - 1; g <= grade+1; g++ {
		if g < 1 {
			continue
		}
		clauses = append(clauses, CollectionAny(field, g))
	}
	return Or(clauses...)
}

func keep(clauses []string) []string {
	kept := clauses[:0:0]
	for _, c := range clauses {
		if c != "" {
			kept = append(kept, c)
		}
	}
	return kept
}

func join(clauses []string, sep string) string {
	return strings.Join(keep(clauses), sep)
}

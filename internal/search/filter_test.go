package search

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqQuotesAndEscapes(t *testing.T) {
	assert.Equal(t, "subject eq 'math'", Eq("subject", "math"))
	assert.Equal(t, "title eq 'O''Brien''s guide'", Eq("title", "O'Brien's guide"))
}

func TestEqInt(t *testing.T) {
	assert.Equal(t, "grade eq 5", EqInt("grade", 5))
}

func TestCollectionAny(t *testing.T) {
	assert.Equal(t, "grade_levels/any(x: x eq 4)", CollectionAny("grade_levels", 4))
	assert.Equal(t, "topics/any(x: x eq 'algebra')", CollectionAnyString("topics", "algebra"))
}

func TestAndSkipsEmptyClauses(t *testing.T) {
	assert.Equal(t, "a eq 'x' and b eq 'y'", And(Eq("a", "x"), "", Eq("b", "y")))
	assert.Equal(t, "a eq 'x'", And(Eq("a", "x"), ""))
	assert.Equal(t, "", And("", ""))
}

func TestOrParenthesizesOnlyWhenNeeded(t *testing.T) {
	assert.Equal(t, "a eq 'x'", Or(Eq("a", "x")))
	assert.Equal(t, "(a eq 'x' or b eq 'y')", Or(Eq("a", "x"), Eq("b", "y")))
	assert.Equal(t, "", Or())
}

func TestGradeWindowMiddleGrade(t *testing.T) {
	got := GradeWindow("grade_levels", 5)
	want := "(grade_levels/any(x: x eq 4) or grade_levels/any(x: x eq 5) or grade_levels/any(x: x eq 6))"
	assert.Equal(t, want, got)
}

func TestGradeWindowClipsBelowOne(t *testing.T) {
	got := GradeWindow("grade_levels", 1)
	want := "(grade_levels/any(x: x eq 1) or grade_levels/any(x: x eq 2))"
	assert.Equal(t, want, got)
}

func TestGradeWindowNeverEmitsInvalidGrades(t *testing.T) {
	for grade := 1; grade <= 12; grade++ {
		got := GradeWindow("grade_levels", grade)
		assert.NotContains(t, got, "x eq 0", "grade %d", grade)
		assert.NotContains(t, got, "x eq -1", "grade %d", grade)
		assert.Contains(t, got, fmt.Sprintf("x eq %d", grade))
	}
}

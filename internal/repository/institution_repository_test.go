package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/unimatch/unimatch-backend/internal/model"
)

func strp(s string) *string { return &s }

func TestCompileFilterAll(t *testing.T) {
	where, order, args, err := compileFilter(model.AllInstitutions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "TRUE" {
		t.Errorf("where = %q, want TRUE", where)
	}
	if order != "i.uni_id ASC" {
		t.Errorf("order = %q, want stable id ordering", order)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestCompileFilterByRegion(t *testing.T) {
	where, order, args, err := compileFilter(model.ByRegion("CA"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "i.state = $1" {
		t.Errorf("where = %q, want parameterized state equality", where)
	}
	if !strings.HasPrefix(order, "i.admission_rate ASC") {
		t.Errorf("order = %q, want admission rate ascending", order)
	}
	if len(args) != 1 || args[0] != "CA" {
		t.Errorf("args = %v, want [CA]", args)
	}
}

func TestCompileFilterByRegionNilIsImpossible(t *testing.T) {
	where, _, args, err := compileFilter(model.FilterSpec{Kind: model.FilterByRegion})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "FALSE" {
		t.Errorf("where = %q, want FALSE for a missing region", where)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestCompileFilterByField(t *testing.T) {
	where, _, args, err := compileFilter(model.ByField("Computer Science"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(where, "EXISTS") || !strings.Contains(where, "p.name = $1") {
		t.Errorf("where = %q, want an EXISTS subquery on program name", where)
	}
	if len(args) != 1 || args[0] != "Computer Science" {
		t.Errorf("args = %v, want [Computer Science]", args)
	}
}

func TestCompileFilterCombined(t *testing.T) {
	minROI := 2.0
	spec := model.FilterSpec{
		Kind:       model.FilterCombined,
		Region:     strp("TX"),
		DegreeType: strp("Bachelor's"),
		Field:      strp("Biology"),
		MinROI:     &minROI,
	}

	where, order, args, err := compileFilter(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every set constraint lands as its own ANDed condition with its own
	// positional parameter.
	if got := strings.Count(where, " AND "); got != 3 {
		t.Errorf("where has %d ANDs, want 3: %q", got, where)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4 values", args)
	}
	if args[0] != "TX" || args[1] != "Bachelor's" || args[2] != "Biology" || args[3] != 2.0 {
		t.Errorf("args = %v, want [TX Bachelor's Biology 2]", args)
	}
	for i := 1; i <= 4; i++ {
		if !strings.Contains(where, placeholderFor(i)) {
			t.Errorf("where missing placeholder $%d: %q", i, where)
		}
	}
	if order != "i.uni_id ASC" {
		t.Errorf("order = %q, want stable id ordering", order)
	}
}

func TestCompileFilterCombinedEmptySelectsEverything(t *testing.T) {
	where, _, args, err := compileFilter(model.FilterSpec{Kind: model.FilterCombined})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "TRUE" {
		t.Errorf("where = %q, want TRUE for an unconstrained preference set", where)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestCompileFilterHighAdmission(t *testing.T) {
	where, order, args, err := compileFilter(model.HighAdmission())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if where != "i.admission_rate > 0.5" {
		t.Errorf("where = %q, want the 0.5 admission floor", where)
	}
	if !strings.HasPrefix(order, "i.admission_rate DESC") {
		t.Errorf("order = %q, want admission rate descending", order)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestCompileFilterUnknownKind(t *testing.T) {
	if _, _, _, err := compileFilter(model.FilterSpec{Kind: 0}); err == nil {
		t.Fatal("expected error for unknown filter kind")
	}
}

func placeholderFor(n int) string {
	return fmt.Sprintf("$%d", n)
}

package domain

import (
	"reflect"
	"testing"
)

func TestParseTimeCommitment(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text    string
		wantMin int
		wantMax int
		wantOK  bool
	}{
		{"5-30 minutes", 5, 30, true},
		{"10 minutes", 10, 10, true},
		{"15 min", 15, 15, true},
		{"1-4 hours", 60, 240, true},
		{"1 hour", 60, 60, true},
		{"varies", 0, 0, false},
		{"Throughout day", 0, 0, false},
		{"", 0, 0, false},
	}
	for _, tc := range cases {
		gotMin, gotMax, gotOK := ParseTimeCommitment(tc.text)
		if gotMin != tc.wantMin || gotMax != tc.wantMax || gotOK != tc.wantOK {
			t.Errorf("ParseTimeCommitment(%q) = %d, %d, %v, want %d, %d, %v",
				tc.text, gotMin, gotMax, gotOK, tc.wantMin, tc.wantMax, tc.wantOK)
		}
	}
}

func TestInferDifficulty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		min   int
		max   int
		known bool
		want  Difficulty
	}{
		{"short", 5, 8, true, DifficultyBeginner},
		{"boundary ten", 5, 10, true, DifficultyIntermediate},
		{"boundary twenty", 10, 20, true, DifficultyIntermediate},
		{"long", 5, 30, true, DifficultyAdvanced},
		{"unknown time", 0, 0, false, DifficultyIntermediate},
	}
	for _, tc := range cases {
		if got := InferDifficulty(tc.min, tc.max, tc.known); got != tc.want {
			t.Errorf("%s: InferDifficulty = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestInferTemperaments(t *testing.T) {
	t.Parallel()

	got := InferTemperaments("Morning Prayer and Movement", "Pray, then a short workout to build strength.")
	want := []string{"sage", "warrior"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InferTemperaments = %v, want %v", got, want)
	}

	if got := InferTemperaments("Breathing", "Slow breaths for five counts."); !reflect.DeepEqual(got, []string{"sage"}) {
		t.Errorf("no-keyword default = %v, want [sage]", got)
	}
}

func TestPatternsFor(t *testing.T) {
	t.Parallel()

	got := PatternsFor(CategoryFaithBased)
	want := []string{"past_prison", "compass_crisis"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PatternsFor(faith-based) = %v, want %v", got, want)
	}

	// Returned slice is a copy.
	got[0] = "mutated"
	if PatternsFor(CategoryFaithBased)[0] != "past_prison" {
		t.Error("PatternsFor exposed internal slice")
	}
}

func TestValidCategory(t *testing.T) {
	t.Parallel()

	for _, category := range Categories {
		if !ValidCategory(category) {
			t.Errorf("ValidCategory(%s) = false", category)
		}
	}
	if ValidCategory("yoga") {
		t.Error("ValidCategory(yoga) = true")
	}
}

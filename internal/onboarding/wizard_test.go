package onboarding

import (
	"errors"
	"testing"
)

func testSteps() []Step {
	return []Step{
		{
			ID:   "color",
			Mode: SingleSelect,
			Options: []Option{
				{Value: "red"}, {Value: "blue"},
			},
		},
		{
			ID:   "hobbies",
			Mode: MultiSelect,
			Options: []Option{
				{Value: "chess"}, {Value: "running"}, {Value: "music"},
			},
		},
	}
}

func startedWizard(t *testing.T) *Wizard {
	t.Helper()
	w := NewWizard(testSteps())
	w.Begin()
	return w
}

func TestAdvanceRejectedWithoutSelection(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(t *testing.T, w *Wizard)
		wantOK bool
	}{
		{
			name:   "single_select_empty",
			setup:  func(t *testing.T, w *Wizard) {},
			wantOK: false,
		},
		{
			name: "single_select_chosen",
			setup: func(t *testing.T, w *Wizard) {
				if err := w.Select("red"); err != nil {
					t.Fatalf("select: %v", err)
				}
			},
			wantOK: true,
		},
		{
			name: "multi_select_toggled_back_to_empty",
			setup: func(t *testing.T, w *Wizard) {
				if err := w.Select("red"); err != nil {
					t.Fatalf("select: %v", err)
				}
				if err := w.Advance(); err != nil {
					t.Fatalf("advance: %v", err)
				}
				_ = w.Select("chess")
				_ = w.Select("chess")
			},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := startedWizard(t)
			tc.setup(t, w)
			before := w.StepIndex()
			err := w.Advance()
			if tc.wantOK {
				if err != nil {
					t.Fatalf("Advance() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrIncompleteStep) {
				t.Fatalf("Advance() = %v, want ErrIncompleteStep", err)
			}
			if got := w.StepIndex(); got != before {
				t.Fatalf("step index changed on rejected advance: got=%d want=%d", got, before)
			}
		})
	}
}

func TestMultiSelectToggleRoundTrip(t *testing.T) {
	w := startedWizard(t)
	if err := w.Select("blue"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := w.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	if err := w.Select("chess"); err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !w.Selected("chess") {
		t.Fatal("expected chess selected after first toggle")
	}
	if err := w.Select("chess"); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if w.Selected("chess") {
		t.Fatal("expected chess deselected after second toggle")
	}
	if w.CanAdvance() {
		t.Fatal("expected CanAdvance false after round-trip toggle")
	}
}

func TestToggleDoesNotChangeStep(t *testing.T) {
	w := startedWizard(t)
	_ = w.Select("red")
	if err := w.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	before := w.StepIndex()
	_ = w.Select("running")
	_ = w.Select("music")
	if got := w.StepIndex(); got != before {
		t.Fatalf("selection changed step index: got=%d want=%d", got, before)
	}
}

func TestRetreatSkipsValidation(t *testing.T) {
	w := startedWizard(t)
	_ = w.Select("red")
	if err := w.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	w.Retreat()
	if got := w.StepIndex(); got != 0 {
		t.Fatalf("StepIndex after retreat = %d, want 0", got)
	}
	w.Retreat()
	if got := w.StepIndex(); got != 0 {
		t.Fatalf("StepIndex after retreat on first step = %d, want 0", got)
	}
}

func TestCompleteFromLastStep(t *testing.T) {
	w := startedWizard(t)
	_ = w.Select("red")
	if err := w.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	_ = w.Select("chess")
	_ = w.Select("music")
	if err := w.Advance(); err != nil {
		t.Fatalf("advance from last step: %v", err)
	}
	if !w.Completed() {
		t.Fatal("expected wizard completed after advancing past last step")
	}
	if _, ok := w.CurrentStep(); ok {
		t.Fatal("expected no active step after completion")
	}
}

func TestAnswersSnapshotFullCatalog(t *testing.T) {
	w := NewWizard(Steps())
	w.Begin()

	picks := map[string][]string{
		StepRole:       {"student"},
		StepField:      {"medicine"},
		StepExperience: {"beginner"},
		StepStudyLevel: {"undergraduate"},
		StepGoals:      {"communication", "exam-prep"},
		StepInterests:  {"research"},
		StepFocusAreas: {"history-taking", "decision-making"},
	}

	for {
		step, ok := w.CurrentStep()
		if !ok {
			break
		}
		for _, v := range picks[step.ID] {
			if err := w.Select(v); err != nil {
				t.Fatalf("select %q on %q: %v", v, step.ID, err)
			}
		}
		if err := w.Advance(); err != nil {
			t.Fatalf("advance from %q: %v", step.ID, err)
		}
		if w.Completed() {
			break
		}
	}

	if !w.Completed() {
		t.Fatal("wizard did not complete")
	}
	got := w.Answers()
	if got.Role != "student" || got.Field != "medicine" || got.Experience != "beginner" || got.StudyLevel != "undergraduate" {
		t.Fatalf("unexpected single answers: %+v", got)
	}
	if len(got.Goals) != 2 || got.Goals[0] != "communication" || got.Goals[1] != "exam-prep" {
		t.Fatalf("unexpected goals: %v", got.Goals)
	}
	if len(got.Interests) != 1 || got.Interests[0] != "research" {
		t.Fatalf("unexpected interests: %v", got.Interests)
	}
	if len(got.FocusAreas) != 2 {
		t.Fatalf("unexpected focus areas: %v", got.FocusAreas)
	}
}

func TestSelectUnknownOptionRejected(t *testing.T) {
	w := startedWizard(t)
	if err := w.Select("green"); err == nil {
		t.Fatal("expected error selecting unknown option")
	}
}

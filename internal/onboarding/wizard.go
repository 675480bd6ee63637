package onboarding

import (
	"errors"
	"fmt"
)

// ErrIncompleteStep rejects an advance whose step selection invariant does not
// hold. The wizard state is unchanged when it is returned.
var ErrIncompleteStep = errors.New("current step is incomplete")

// Answers is the accumulated questionnaire result, committed to the profile in
// a single bulk update on completion.
type Answers struct {
	Role       string   `json:"role"`
	Field      string   `json:"field"`
	Experience string   `json:"experience"`
	StudyLevel string   `json:"studyLevel"`
	Goals      []string `json:"goals"`
	Interests  []string `json:"interests"`
	FocusAreas []string `json:"focusAreas"`
}

// Wizard walks the ordered step sequence: a virtual intro state before step 0,
// indices 0..N-1, and a completed state after the last step. Selection edits
// never change the step index; only Advance and Retreat do.
type Wizard struct {
	steps     []Step
	index     int
	intro     bool
	completed bool
	single    map[string]string
	multi     map[string][]string
}

func NewWizard(steps []Step) *Wizard {
	return &Wizard{
		steps:  steps,
		intro:  true,
		single: map[string]string{},
		multi:  map[string][]string{},
	}
}

// Begin leaves the intro state. No-op once the questionnaire has started.
func (w *Wizard) Begin() {
	w.intro = false
}

func (w *Wizard) InIntro() bool   { return w.intro }
func (w *Wizard) Completed() bool { return w.completed }

// CurrentStep reports the active step, false while in intro or after
// completion.
func (w *Wizard) CurrentStep() (Step, bool) {
	if w.intro || w.completed || w.index >= len(w.steps) {
		return Step{}, false
	}
	return w.steps[w.index], true
}

// StepIndex reports the zero-based position of the active step.
func (w *Wizard) StepIndex() int { return w.index }

// Select records a choice on the active step. Single-select replaces the
// value; multi-select flips set membership, so selecting the same value twice
// restores the original set.
func (w *Wizard) Select(value string) error {
	step, ok := w.CurrentStep()
	if !ok {
		return fmt.Errorf("no active step")
	}
	if !hasOption(step, value) {
		return fmt.Errorf("step %q has no option %q", step.ID, value)
	}
	switch step.Mode {
	case SingleSelect:
		w.single[step.ID] = value
	case MultiSelect:
		w.multi[step.ID] = toggle(w.multi[step.ID], value)
	}
	return nil
}

// Selected reports whether a value is chosen on the active step.
func (w *Wizard) Selected(value string) bool {
	step, ok := w.CurrentStep()
	if !ok {
		return false
	}
	if step.Mode == SingleSelect {
		return w.single[step.ID] == value
	}
	for _, v := range w.multi[step.ID] {
		if v == value {
			return true
		}
	}
	return false
}

// CanAdvance reports whether the active step's selection invariant holds:
// single-select needs exactly one non-empty value, multi-select a non-empty
// set.
func (w *Wizard) CanAdvance() bool {
	step, ok := w.CurrentStep()
	if !ok {
		return false
	}
	if step.Mode == SingleSelect {
		return w.single[step.ID] != ""
	}
	return len(w.multi[step.ID]) > 0
}

// Advance moves to the next step, or completes the wizard from the last step.
// Returns ErrIncompleteStep, leaving the index unchanged, when the active
// step's invariant does not hold.
func (w *Wizard) Advance() error {
	if _, ok := w.CurrentStep(); !ok {
		return fmt.Errorf("no active step")
	}
	if !w.CanAdvance() {
		return ErrIncompleteStep
	}
	if w.index == len(w.steps)-1 {
		w.completed = true
		return nil
	}
	w.index++
	return nil
}

// Retreat moves back one step without validation. No-op on step 0.
func (w *Wizard) Retreat() {
	if w.intro || w.completed {
		return
	}
	if w.index > 0 {
		w.index--
	}
}

// Answers snapshots the accumulated selections. Safe to call at any point;
// unanswered steps yield zero values.
func (w *Wizard) Answers() Answers {
	return Answers{
		Role:       w.single[StepRole],
		Field:      w.single[StepField],
		Experience: w.single[StepExperience],
		StudyLevel: w.single[StepStudyLevel],
		Goals:      cloneValues(w.multi[StepGoals]),
		Interests:  cloneValues(w.multi[StepInterests]),
		FocusAreas: cloneValues(w.multi[StepFocusAreas]),
	}
}

func hasOption(step Step, value string) bool {
	for _, opt := range step.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func toggle(values []string, value string) []string {
	for i, v := range values {
		if v == value {
			return append(values[:i:i], values[i+1:]...)
		}
	}
	return append(values, value)
}

func cloneValues(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Replay runs a full answer set through a fresh wizard, applying the same
// per-step validation the interactive flow enforces. Rejects unknown option
// values and steps left unanswered.
func Replay(answers Answers) error {
	w := NewWizard(Steps())
	w.Begin()
	for {
		step, ok := w.CurrentStep()
		if !ok {
			return nil
		}
		for _, v := range answers.valuesFor(step.ID) {
			if err := w.Select(v); err != nil {
				return err
			}
		}
		if err := w.Advance(); err != nil {
			return fmt.Errorf("step %q: %w", step.ID, err)
		}
		if w.Completed() {
			return nil
		}
	}
}

func (a Answers) valuesFor(stepID string) []string {
	switch stepID {
	case StepRole:
		return singleValue(a.Role)
	case StepField:
		return singleValue(a.Field)
	case StepExperience:
		return singleValue(a.Experience)
	case StepStudyLevel:
		return singleValue(a.StudyLevel)
	case StepGoals:
		return a.Goals
	case StepInterests:
		return a.Interests
	case StepFocusAreas:
		return a.FocusAreas
	}
	return nil
}

func singleValue(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}


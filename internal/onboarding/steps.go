package onboarding

type Mode string

const (
	SingleSelect Mode = "single-select"
	MultiSelect  Mode = "multi-select"
)

// Step ids double as profile answer fields.
const (
	StepRole       = "role"
	StepField      = "field"
	StepExperience = "experience"
	StepStudyLevel = "studyLevel"
	StepGoals      = "goals"
	StepInterests  = "interests"
	StepFocusAreas = "focusAreas"
)

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Mode        Mode     `json:"type"`
	Options     []Option `json:"options"`
}

var steps = []Step{
	{
		ID:          StepRole,
		Title:       "What best describes you?",
		Description: "This helps us tailor scenarios to your role.",
		Mode:        SingleSelect,
		Options: []Option{
			{Value: "student", Label: "Student", Icon: "IconBook", Color: "blue"},
			{Value: "professional", Label: "Practicing Professional", Icon: "IconStethoscope", Color: "green"},
			{Value: "educator", Label: "Educator", Icon: "IconUsers", Color: "purple"},
			{Value: "researcher", Label: "Researcher", Icon: "IconMicroscope", Color: "orange"},
		},
	},
	{
		ID:          StepField,
		Title:       "What field are you in?",
		Description: "Pick the field closest to your work or study.",
		Mode:        SingleSelect,
		Options: []Option{
			{Value: "medicine", Label: "Medicine", Icon: "IconStethoscope", Color: "red"},
			{Value: "nursing", Label: "Nursing", Icon: "IconHeart", Color: "pink"},
			{Value: "pharmacy", Label: "Pharmacy", Icon: "IconPill", Color: "teal"},
			{Value: "psychology", Label: "Psychology", Icon: "IconBrain", Color: "indigo"},
			{Value: "other", Label: "Other", Icon: "IconUser", Color: "gray"},
		},
	},
	{
		ID:          StepExperience,
		Title:       "How much experience do you have?",
		Description: "We adjust scenario difficulty to match.",
		Mode:        SingleSelect,
		Options: []Option{
			{Value: "beginner", Label: "Just starting out", Icon: "IconUser", Color: "blue"},
			{Value: "intermediate", Label: "Some experience", Icon: "IconTarget", Color: "yellow"},
			{Value: "advanced", Label: "Experienced", Icon: "IconChartBar", Color: "green"},
		},
	},
	{
		ID:          StepStudyLevel,
		Title:       "What is your study level?",
		Description: "This helps calibrate feedback depth.",
		Mode:        SingleSelect,
		Options: []Option{
			{Value: "undergraduate", Label: "Undergraduate", Icon: "IconBook", Color: "blue"},
			{Value: "graduate", Label: "Graduate", Icon: "IconBook", Color: "purple"},
			{Value: "postgraduate", Label: "Postgraduate", Icon: "IconMicroscope", Color: "orange"},
			{Value: "continuing", Label: "Continuing education", Icon: "IconUsers", Color: "green"},
		},
	},
	{
		ID:          StepGoals,
		Title:       "What are your goals?",
		Description: "Choose everything you want to work toward.",
		Mode:        MultiSelect,
		Options: []Option{
			{Value: "communication", Label: "Communication skills", Icon: "IconMessage", Color: "blue"},
			{Value: "patient-interaction", Label: "Patient interaction", Icon: "IconHeart", Color: "pink"},
			{Value: "interview-prep", Label: "Interview preparation", Icon: "IconUser", Color: "purple"},
			{Value: "leadership", Label: "Leadership", Icon: "IconTarget", Color: "orange"},
			{Value: "exam-prep", Label: "Exam preparation", Icon: "IconFileDescription", Color: "teal"},
		},
	},
	{
		ID:          StepInterests,
		Title:       "What interests you most?",
		Description: "Select all areas that interest you.",
		Mode:        MultiSelect,
		Options: []Option{
			{Value: "clinical-practice", Label: "Clinical practice", Icon: "IconStethoscope", Color: "red"},
			{Value: "research", Label: "Research", Icon: "IconMicroscope", Color: "orange"},
			{Value: "teaching", Label: "Teaching", Icon: "IconBook", Color: "blue"},
			{Value: "teamwork", Label: "Teamwork", Icon: "IconUsers", Color: "green"},
			{Value: "diagnostics", Label: "Diagnostics", Icon: "IconBrain", Color: "indigo"},
		},
	},
	{
		ID:          StepFocusAreas,
		Title:       "Where do you want to focus?",
		Description: "Pick the scenario types we should surface first.",
		Mode:        MultiSelect,
		Options: []Option{
			{Value: "history-taking", Label: "History taking", Icon: "IconFileDescription", Color: "blue"},
			{Value: "difficult-news", Label: "Breaking difficult news", Icon: "IconMessage", Color: "red"},
			{Value: "conflict-resolution", Label: "Conflict resolution", Icon: "IconUsers", Color: "orange"},
			{Value: "presentations", Label: "Presentations", Icon: "IconVideo", Color: "purple"},
			{Value: "decision-making", Label: "Decision making", Icon: "IconChartBar", Color: "green"},
		},
	},
}

// Steps returns the ordered onboarding questionnaire. The catalog is static
// configuration, immutable at runtime; callers get a copy of the slice header
// chain so they cannot reorder the canonical sequence.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

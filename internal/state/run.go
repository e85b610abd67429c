package state

// Document is one piece of gathered context: a search hit or a file chunk.
type Document struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// RunState is the record threaded through the pipeline for one request.
// Values are never mutated in place; Apply and Clarify return new values.
// Pointer fields distinguish "absent" from "empty".
type RunState struct {
	OriginalPrompt   string     `json:"original_prompt"`
	UserFilePaths    []string   `json:"user_file_paths,omitempty"`
	ResearchPlan     []string   `json:"research_plan,omitempty"`
	ContextDocuments []Document `json:"context_documents,omitempty"`
	RefinedPrompt    *string    `json:"refined_prompt,omitempty"`
	QuestionsForUser []string   `json:"questions_for_user"`
	FinalOutput      *string    `json:"final_output,omitempty"`
	Error            *string    `json:"error,omitempty"`
}

// ClarificationMarker separates the request from each clarification answer.
const ClarificationMarker = "\n\nUser's clarification: "

// Outcome values reported by RunState.Outcome.
const (
	OutcomeRunning    = "running"
	OutcomeCompleted  = "completed"
	OutcomeNeedsInput = "needs-input"
	OutcomeFailed     = "failed"
)

// New seeds a run state for a request.
func New(prompt string, files []string) RunState {
	return RunState{
		OriginalPrompt: prompt,
		UserFilePaths:  copyStrings(files),
	}
}

// Apply merges d into a copy of s. Only the fields named in d.Set change.
// An error already present is never replaced.
func (s RunState) Apply(d Delta) RunState {
	next := s.clone()
	if d.Set.Has(FieldResearchPlan) {
		next.ResearchPlan = copyStrings(d.ResearchPlan)
		if next.ResearchPlan == nil {
			next.ResearchPlan = []string{}
		}
	}
	if d.Set.Has(FieldContextDocuments) {
		next.ContextDocuments = append([]Document{}, d.ContextDocuments...)
	}
	if d.Set.Has(FieldRefinedPrompt) {
		v := d.RefinedPrompt
		next.RefinedPrompt = &v
	}
	if d.Set.Has(FieldQuestions) {
		next.QuestionsForUser = copyStrings(d.Questions)
		if next.QuestionsForUser == nil {
			next.QuestionsForUser = []string{}
		}
	}
	if d.Set.Has(FieldFinalOutput) {
		v := d.FinalOutput
		next.FinalOutput = &v
	}
	if d.Set.Has(FieldError) && next.Error == nil {
		v := d.Error
		next.Error = &v
	}
	return next
}

// Clarify appends the user's answer to the request and clears the pending
// questions, readying the state for another planning pass.
func (s RunState) Clarify(answer string) RunState {
	next := s.clone()
	next.OriginalPrompt = s.OriginalPrompt + ClarificationMarker + answer
	next.QuestionsForUser = []string{}
	return next
}

// Failed reports whether an error has been recorded.
func (s RunState) Failed() bool { return s.Error != nil }

// NeedsInput reports whether questions are waiting for the user.
func (s RunState) NeedsInput() bool { return len(s.QuestionsForUser) > 0 }

// Outcome classifies the state. An error wins over pending questions.
func (s RunState) Outcome() string {
	switch {
	case s.Error != nil:
		return OutcomeFailed
	case len(s.QuestionsForUser) > 0:
		return OutcomeNeedsInput
	case s.FinalOutput != nil:
		return OutcomeCompleted
	default:
		return OutcomeRunning
	}
}

// ErrorText returns the recorded error, or "".
func (s RunState) ErrorText() string {
	if s.Error == nil {
		return ""
	}
	return *s.Error
}

// Output returns the final output, or "".
func (s RunState) Output() string {
	if s.FinalOutput == nil {
		return ""
	}
	return *s.FinalOutput
}

func (s RunState) clone() RunState {
	next := s
	next.UserFilePaths = copyStrings(s.UserFilePaths)
	next.ResearchPlan = copyStrings(s.ResearchPlan)
	next.QuestionsForUser = copyStrings(s.QuestionsForUser)
	if s.ContextDocuments != nil {
		next.ContextDocuments = append([]Document{}, s.ContextDocuments...)
	}
	return next
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

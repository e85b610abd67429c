package state

// Field is a bitmask naming the RunState fields a Delta sets.
type Field uint8

const (
	FieldResearchPlan Field = 1 << iota
	FieldContextDocuments
	FieldRefinedPrompt
	FieldQuestions
	FieldFinalOutput
	FieldError
)

// Has reports whether every bit in f is set.
func (s Field) Has(f Field) bool { return s&f == f }

// Delta is the partial update a stage returns. Fields not named in Set are
// ignored by Apply, so the zero Delta changes nothing.
type Delta struct {
	Set              Field
	ResearchPlan     []string
	ContextDocuments []Document
	RefinedPrompt    string
	Questions        []string
	FinalOutput      string
	Error            string
}

// Plan sets the research plan.
func Plan(queries []string) Delta {
	return Delta{Set: FieldResearchPlan, ResearchPlan: queries}
}

// Context sets the gathered context documents.
func Context(docs []Document) Delta {
	return Delta{Set: FieldContextDocuments, ContextDocuments: docs}
}

// Refined sets the refined prompt and an empty question list.
func Refined(text string) Delta {
	return Delta{Set: FieldRefinedPrompt | FieldQuestions, RefinedPrompt: text, Questions: []string{}}
}

// Questions sets the questions for the user and leaves the refined prompt absent.
func Questions(qs []string) Delta {
	return Delta{Set: FieldQuestions, Questions: qs}
}

// Output sets the final output.
func Output(text string) Delta {
	return Delta{Set: FieldFinalOutput, FinalOutput: text}
}

// Failure records an error.
func Failure(msg string) Delta {
	return Delta{Set: FieldError, Error: msg}
}

// Halt records an error and drops any pending questions. Drivers use it
// when they stop a run that was waiting for input.
func Halt(msg string) Delta {
	return Delta{Set: FieldError | FieldQuestions, Error: msg, Questions: []string{}}
}

// Failed reports whether the delta records an error.
func (d Delta) Failed() bool { return d.Set.Has(FieldError) }

// Map renders the delta the way it is written to a snapshot: only the
// fields it sets, under their wire names.
func (d Delta) Map() map[string]any {
	m := make(map[string]any)
	if d.Set.Has(FieldResearchPlan) {
		m["research_plan"] = nonNil(d.ResearchPlan)
	}
	if d.Set.Has(FieldContextDocuments) {
		docs := d.ContextDocuments
		if docs == nil {
			docs = []Document{}
		}
		m["context_documents"] = docs
	}
	if d.Set.Has(FieldRefinedPrompt) {
		m["refined_prompt"] = d.RefinedPrompt
	}
	if d.Set.Has(FieldQuestions) {
		m["questions_for_user"] = nonNil(d.Questions)
	}
	if d.Set.Has(FieldFinalOutput) {
		m["final_output"] = d.FinalOutput
	}
	if d.Set.Has(FieldError) {
		m["error"] = d.Error
	}
	return m
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

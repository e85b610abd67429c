package state

import (
	"reflect"
	"testing"
)

func TestApply_LeavesReceiverUntouched(t *testing.T) {
	base := New("p", []string{"a.pdf"})
	next := base.Apply(Plan([]string{"q1", "q2"}))

	if base.ResearchPlan != nil {
		t.Fatalf("receiver mutated: %v", base.ResearchPlan)
	}
	if !reflect.DeepEqual(next.ResearchPlan, []string{"q1", "q2"}) {
		t.Fatalf("ResearchPlan = %v", next.ResearchPlan)
	}
	if !reflect.DeepEqual(next.UserFilePaths, []string{"a.pdf"}) {
		t.Fatalf("UserFilePaths = %v", next.UserFilePaths)
	}
}

func TestApply_CopiesSlices(t *testing.T) {
	plan := []string{"q1"}
	s := New("p", nil).Apply(Plan(plan))
	plan[0] = "changed"
	if s.ResearchPlan[0] != "q1" {
		t.Fatalf("state aliased caller slice: %v", s.ResearchPlan)
	}
}

func TestApply_NilPlanBecomesEmpty(t *testing.T) {
	s := New("p", nil).Apply(Plan(nil))
	if s.ResearchPlan == nil || len(s.ResearchPlan) != 0 {
		t.Fatalf("ResearchPlan = %#v, want empty non-nil", s.ResearchPlan)
	}
}

func TestApply_ZeroDeltaChangesNothing(t *testing.T) {
	s := New("p", nil).Apply(Plan([]string{"q"}))
	if !reflect.DeepEqual(s.Apply(Delta{}), s) {
		t.Fatal("zero delta changed the state")
	}
}

func TestApply_ErrorNeverReplaced(t *testing.T) {
	s := New("p", nil).Apply(Failure("first")).Apply(Failure("second"))
	if s.ErrorText() != "first" {
		t.Fatalf("Error = %q, want first", s.ErrorText())
	}
}

func TestApply_RefinedClearsQuestions(t *testing.T) {
	s := New("p", nil).Apply(Refined("spec"))
	if s.RefinedPrompt == nil || *s.RefinedPrompt != "spec" {
		t.Fatalf("RefinedPrompt = %v", s.RefinedPrompt)
	}
	if s.QuestionsForUser == nil || len(s.QuestionsForUser) != 0 {
		t.Fatalf("QuestionsForUser = %#v", s.QuestionsForUser)
	}
}

func TestApply_QuestionsLeaveRefinedAbsent(t *testing.T) {
	s := New("p", nil).Apply(Questions([]string{"Which audience?"}))
	if s.RefinedPrompt != nil {
		t.Fatalf("RefinedPrompt = %q, want absent", *s.RefinedPrompt)
	}
	if !s.NeedsInput() {
		t.Fatal("expected NeedsInput")
	}
}

func TestClarify_AppendsAnswerAndClearsQuestions(t *testing.T) {
	s := New("Write a guide", nil).Apply(Questions([]string{"Which audience?"}))
	next := s.Clarify("beginners")

	want := "Write a guide\n\nUser's clarification: beginners"
	if next.OriginalPrompt != want {
		t.Fatalf("OriginalPrompt = %q, want %q", next.OriginalPrompt, want)
	}
	if len(next.QuestionsForUser) != 0 {
		t.Fatalf("QuestionsForUser = %v", next.QuestionsForUser)
	}
	if s.OriginalPrompt != "Write a guide" || len(s.QuestionsForUser) != 1 {
		t.Fatal("Clarify mutated the receiver")
	}
}

func TestHalt_DropsQuestions(t *testing.T) {
	s := New("p", nil).Apply(Questions([]string{"q"})).Apply(Halt("stopped"))
	if s.Outcome() != OutcomeFailed || s.NeedsInput() {
		t.Fatalf("state = %+v", s)
	}
}

func TestDeltaMap_OnlySetFields(t *testing.T) {
	m := Refined("spec").Map()
	if len(m) != 2 {
		t.Fatalf("map = %v", m)
	}
	if m["refined_prompt"] != "spec" {
		t.Fatalf("refined_prompt = %v", m["refined_prompt"])
	}
	if qs, ok := m["questions_for_user"].([]string); !ok || len(qs) != 0 {
		t.Fatalf("questions_for_user = %#v", m["questions_for_user"])
	}

	if m := Failure("planner Agent failed: boom").Map(); len(m) != 1 || m["error"] != "planner Agent failed: boom" {
		t.Fatalf("failure map = %v", m)
	}
	if m := (Delta{}).Map(); len(m) != 0 {
		t.Fatalf("zero delta map = %v", m)
	}
}

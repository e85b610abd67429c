package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/jorge-barreto/augmentor/internal/dispatch"
	"github.com/jorge-barreto/augmentor/internal/events"
	"github.com/jorge-barreto/augmentor/internal/llm"
	"github.com/jorge-barreto/augmentor/internal/search"
	"github.com/jorge-barreto/augmentor/internal/stages"
	"github.com/jorge-barreto/augmentor/internal/state"
)

const request = "Summarize quantum computing"

// scriptedLLM answers by model name: "p" plans, "a" augments, "g" generates.
// augmentReplies are consumed one per call; the last one repeats.
type scriptedLLM struct {
	mu             sync.Mutex
	planErr        error
	augmentReplies []string
	augmentCalls   int
	generateCalls  int
	prompts        []string
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.Request) (llm.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, req.Prompt)
	switch req.Model {
	case "p":
		if s.planErr != nil {
			return llm.Response{}, s.planErr
		}
		return llm.Response{Text: `{"plan": ["quantum computing basics"]}`}, nil
	case "a":
		reply := s.augmentReplies[len(s.augmentReplies)-1]
		if s.augmentCalls < len(s.augmentReplies) {
			reply = s.augmentReplies[s.augmentCalls]
		}
		s.augmentCalls++
		return llm.Response{Text: reply}, nil
	case "g":
		s.generateCalls++
		return llm.Response{Text: "Quantum computers use qubits."}, nil
	}
	return llm.Response{}, errors.New("unexpected model " + req.Model)
}

type oneResultSearch struct{}

func (oneResultSearch) Search(context.Context, string) ([]search.Result, error) {
	return []search.Result{{URL: "x.com", Content: "..."}}, nil
}

type fixedAsker struct {
	answers []string
	err     error
	asked   [][]string
}

func (a *fixedAsker) Ask(_ context.Context, questions []string) (string, error) {
	a.asked = append(a.asked, questions)
	if a.err != nil {
		return "", a.err
	}
	answer := a.answers[0]
	if len(a.answers) > 1 {
		a.answers = a.answers[1:]
	}
	return answer, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		k := string(e.Kind)
		if e.Stage != "" {
			k += ":" + e.Stage
		}
		out = append(out, k)
	}
	return out
}

type recordingHistory struct {
	records []state.Record
	states  []state.RunState
}

func (h *recordingHistory) RecordRun(_ context.Context, rec state.Record, st state.RunState) error {
	h.records = append(h.records, rec)
	h.states = append(h.states, st)
	return nil
}

// countingDispatcher wraps the real dispatcher and records stage order.
type countingDispatcher struct {
	inner dispatch.Dispatcher
	mu    sync.Mutex
	calls []string
}

func (c *countingDispatcher) Dispatch(ctx context.Context, stage dispatch.Stage, st state.RunState, model string) dispatch.Outcome {
	c.mu.Lock()
	c.calls = append(c.calls, stage.Name)
	c.mu.Unlock()
	return c.inner.Dispatch(ctx, stage, st, model)
}

func (c *countingDispatcher) callNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.calls))
	copy(out, c.calls)
	return out
}

func newTestRunner(t *testing.T, model *scriptedLLM) (*Runner, *countingDispatcher) {
	t.Helper()
	runDir := filepath.Join(t.TempDir(), "debug_output", "run-1")
	set := &stages.Set{LLM: model, Search: oneResultSearch{}}
	disp := &countingDispatcher{inner: &dispatch.DefaultDispatcher{Sink: &dispatch.FileSink{Dir: runDir}}}
	return &Runner{
		RunID:      "run-1",
		Stages:     set.Pipeline(),
		Models:     state.Models{Planner: "p", Augmentor: "a", Generator: "g"},
		Dispatcher: disp,
		RunDir:     runDir,
	}, disp
}

func TestRun_Completes(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"<task>Summarize quantum computing for a general reader</task>"}}
	r, disp := newTestRunner(t, model)

	st := r.Run(context.Background(), state.New(request, nil))

	if st.FinalOutput == nil || *st.FinalOutput != "Quantum computers use qubits." {
		t.Fatalf("final output = %v", st.FinalOutput)
	}
	if st.Error != nil {
		t.Fatalf("unexpected error: %s", *st.Error)
	}
	if st.QuestionsForUser == nil || len(st.QuestionsForUser) != 0 {
		t.Fatalf("questions = %#v, want empty list", st.QuestionsForUser)
	}
	want := []string{"planner", "researcher", "augmentor", "generator"}
	if got := disp.callNames(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if len(st.ContextDocuments) != 1 || st.ContextDocuments[0].Source != "x.com" {
		t.Fatalf("context = %v", st.ContextDocuments)
	}
	if r.Record.Status != state.StatusCompleted {
		t.Fatalf("status = %q", r.Record.Status)
	}
}

func TestRun_WritesArtifacts(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"refined"}}
	r, _ := newTestRunner(t, model)
	r.Run(context.Background(), state.New(request, nil))

	for _, name := range []string{"1_planner_output.json", "2_researcher_output.json", "3_augmentor_output.json", "4_generator_output.json", "state.json", "run.json", "timing.json"} {
		if _, err := os.Stat(filepath.Join(r.RunDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	rec, err := state.Load(r.RunDir)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != state.StatusCompleted || rec.Passes != 1 {
		t.Fatalf("record = %+v", rec)
	}
	saved, err := state.LoadRun(r.RunDir)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Output() != "Quantum computers use qubits." {
		t.Fatalf("run.json output = %q", saved.Output())
	}
}

func TestRun_StopsWithQuestions(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["Which audience?"]}`}}
	r, disp := newTestRunner(t, model)

	st := r.Run(context.Background(), state.New(request, nil))

	if len(st.QuestionsForUser) != 1 || st.QuestionsForUser[0] != "Which audience?" {
		t.Fatalf("questions = %v", st.QuestionsForUser)
	}
	if st.FinalOutput != nil || st.RefinedPrompt != nil || st.Error != nil {
		t.Fatalf("unexpected fields: %+v", st)
	}
	if model.generateCalls != 0 {
		t.Fatal("generator must not run while questions are pending")
	}
	if len(disp.callNames()) != 3 {
		t.Fatalf("calls = %v", disp.callNames())
	}
	if r.Record.Status != state.StatusNeedsInput {
		t.Fatalf("status = %q", r.Record.Status)
	}
}

func TestRun_PlannerFailureStopsPipeline(t *testing.T) {
	model := &scriptedLLM{planErr: errors.New("quota exceeded"), augmentReplies: []string{"unused"}}
	r, disp := newTestRunner(t, model)

	st := r.Run(context.Background(), state.New(request, nil))

	if st.Error == nil || !strings.HasPrefix(*st.Error, "planner Agent failed:") {
		t.Fatalf("error = %v", st.Error)
	}
	if st.ResearchPlan != nil || st.ContextDocuments != nil || st.RefinedPrompt != nil || st.FinalOutput != nil {
		t.Fatalf("later fields populated: %+v", st)
	}
	if got := disp.callNames(); len(got) != 1 {
		t.Fatalf("calls = %v", got)
	}
	if r.Record.Status != state.StatusFailed {
		t.Fatalf("status = %q", r.Record.Status)
	}
}

func TestRun_FailedStateNotRerun(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"unused"}}
	r, disp := newTestRunner(t, model)

	in := state.New(request, nil).Apply(state.Failure("earlier failure"))
	st := r.Run(context.Background(), in)
	if st.ErrorText() != "earlier failure" {
		t.Fatalf("error = %q", st.ErrorText())
	}
	if len(disp.callNames()) != 0 {
		t.Fatalf("calls = %v", disp.callNames())
	}
}

func TestRun_ContextCancelled(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"unused"}}
	r, disp := newTestRunner(t, model)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := r.Run(ctx, state.New(request, nil))

	if !strings.HasPrefix(st.ErrorText(), "run interrupted") {
		t.Fatalf("error = %q", st.ErrorText())
	}
	if len(disp.callNames()) != 0 {
		t.Fatalf("calls = %v", disp.callNames())
	}
	if r.Record.Status != state.StatusInterrupted {
		t.Fatalf("status = %q", r.Record.Status)
	}
}

func TestResume_AppendsClarification(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["Which audience?"]}`, "refined"}}
	r, _ := newTestRunner(t, model)

	st := r.Run(context.Background(), state.New(request, nil))
	st = r.Resume(context.Background(), st, "beginners")

	if st.OriginalPrompt != request+"\n\nUser's clarification: beginners" {
		t.Fatalf("prompt = %q", st.OriginalPrompt)
	}
	if st.Output() == "" {
		t.Fatalf("expected completion, got %+v", st)
	}
	if r.Record.Passes != 2 {
		t.Fatalf("passes = %d", r.Record.Passes)
	}
}

func TestRunInteractive_ClarifiesThenCompletes(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["Which audience?"]}`, "refined"}}
	r, disp := newTestRunner(t, model)
	asker := &fixedAsker{answers: []string{"beginners"}}

	st, err := r.RunInteractive(context.Background(), state.New(request, nil), asker)
	if err != nil {
		t.Fatal(err)
	}
	if len(asker.asked) != 1 || asker.asked[0][0] != "Which audience?" {
		t.Fatalf("asked = %v", asker.asked)
	}
	if st.Output() != "Quantum computers use qubits." {
		t.Fatalf("output = %q", st.Output())
	}
	if len(st.QuestionsForUser) != 0 {
		t.Fatalf("questions = %v", st.QuestionsForUser)
	}
	// Second pass replans from the amended request.
	if got := len(disp.callNames()); got != 7 {
		t.Fatalf("calls = %v", disp.callNames())
	}
	planPrompt := model.prompts[len(model.prompts)-3]
	if !strings.Contains(planPrompt, "User's clarification: beginners") {
		t.Fatalf("second planning prompt lacks clarification: %q", planPrompt)
	}
}

func TestRunInteractive_ContextReplacedEachPass(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["q"]}`, `{"questions": ["q"]}`, "refined"}}
	r, _ := newTestRunner(t, model)

	st, err := r.RunInteractive(context.Background(), state.New(request, nil), &fixedAsker{answers: []string{"a"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(st.ContextDocuments) != 1 {
		t.Fatalf("context accumulated across passes: %d documents", len(st.ContextDocuments))
	}
}

func TestRunInteractive_PassLimit(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["More?"]}`}}
	r, _ := newTestRunner(t, model)
	r.MaxPasses = 2
	asker := &fixedAsker{answers: []string{"more detail"}}

	st, err := r.RunInteractive(context.Background(), state.New(request, nil), asker)
	if err != nil {
		t.Fatal(err)
	}
	if len(asker.asked) != 1 {
		t.Fatalf("asked %d times, want 1", len(asker.asked))
	}
	if !strings.Contains(st.ErrorText(), "pass limit of 2") {
		t.Fatalf("error = %q", st.ErrorText())
	}
	if len(st.QuestionsForUser) != 0 {
		t.Fatalf("questions should be cleared, got %v", st.QuestionsForUser)
	}
	if st.Outcome() != state.OutcomeFailed {
		t.Fatalf("outcome = %q", st.Outcome())
	}
}

func TestRunInteractive_AskerError(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["Which audience?"]}`}}
	r, _ := newTestRunner(t, model)

	st, err := r.RunInteractive(context.Background(), state.New(request, nil), &fixedAsker{err: errors.New("stdin closed")})
	if err == nil || !strings.Contains(err.Error(), "stdin closed") {
		t.Fatalf("err = %v", err)
	}
	if !st.NeedsInput() {
		t.Fatal("pending questions should be returned")
	}
	rec, loadErr := state.Load(r.RunDir)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if rec.Status != state.StatusInterrupted {
		t.Fatalf("status = %q", rec.Status)
	}
}

func TestRun_PublishesEvents(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{`{"questions": ["Which audience?"]}`}}
	r, _ := newTestRunner(t, model)
	pub := &recordingPublisher{}
	r.Events = pub

	r.Run(context.Background(), state.New(request, nil))

	want := []string{
		"run.started",
		"stage.started:planner", "stage.finished:planner",
		"stage.started:researcher", "stage.finished:researcher",
		"stage.started:augmentor", "stage.finished:augmentor",
		"run.paused", "run.finished",
	}
	if got := pub.kinds(); strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("events:\n got %v\nwant %v", got, want)
	}
	for _, e := range pub.events {
		if e.RunID != "run-1" {
			t.Fatalf("event without run id: %+v", e)
		}
	}
}

func TestRun_RecordsHistory(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"refined"}}
	r, _ := newTestRunner(t, model)
	hist := &recordingHistory{}
	r.History = hist

	r.Run(context.Background(), state.New(request, nil))

	if len(hist.records) != 1 {
		t.Fatalf("history entries = %d", len(hist.records))
	}
	if hist.records[0].Status != state.StatusCompleted || hist.records[0].Models.Planner != "p" {
		t.Fatalf("record = %+v", hist.records[0])
	}
}

func TestRun_WithoutRunDir(t *testing.T) {
	model := &scriptedLLM{augmentReplies: []string{"refined"}}
	set := &stages.Set{LLM: model, Search: oneResultSearch{}}
	r := &Runner{
		RunID:      "mem",
		Stages:     set.Pipeline(),
		Models:     state.Models{Planner: "p", Augmentor: "a", Generator: "g"},
		Dispatcher: &dispatch.DefaultDispatcher{},
	}
	st := r.Run(context.Background(), state.New(request, nil))
	if st.Output() == "" {
		t.Fatalf("expected output, got %+v", st)
	}
}

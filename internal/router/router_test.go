package router

import (
	"context"
	"errors"
	"testing"

	"github.com/yunseol/ingrid/internal/agent"
	"github.com/yunseol/ingrid/internal/core"
)

// scriptedCompleter replays canned responses in order; nil errs are allowed.
type scriptedCompleter struct {
	responses []string
	errs      []error
	calls     int
}

func (c *scriptedCompleter) GenerateChat(_ context.Context, _ []agent.ChatMessage, _ []agent.ToolDef) (agent.ChatResponse, error) {
	i := c.calls
	c.calls++
	if c.errs != nil && c.errs[i] != nil {
		return agent.ChatResponse{}, c.errs[i]
	}
	return agent.ChatResponse{Content: c.responses[i]}, nil
}

func TestRouteValidResponse(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`{"worker": "regulation", "confidence": 0.9, "reasoning": "asks about EU limits"}`,
	}}
	r := New(completer)

	result := r.Route(context.Background(), "what is the EU limit for phenoxyethanol?", nil)

	if result.Worker != core.WorkerRegulation {
		t.Errorf("Worker: got %s, want %s", result.Worker, core.WorkerRegulation)
	}
	if result.Confidence != 0.9 {
		t.Errorf("Confidence: got %v, want 0.9", result.Confidence)
	}
	if completer.calls != 1 {
		t.Errorf("calls: got %d, want 1", completer.calls)
	}
}

func TestRouteStripsCodeFences(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		"```json\n{\"worker\": \"formula\", \"confidence\": 0.8}\n```",
	}}
	r := New(completer)

	result := r.Route(context.Background(), "suggest a moisturizer base", nil)

	if result.Worker != core.WorkerFormula {
		t.Errorf("Worker: got %s, want %s", result.Worker, core.WorkerFormula)
	}
}

func TestRouteInvalidWorkerAndConfidence(t *testing.T) {
	// Bogus label and out-of-range confidence both degrade to defaults
	// without consuming the retry.
	completer := &scriptedCompleter{responses: []string{
		"```json\n{\"worker\": \"astrology\", \"confidence\": 2.0}\n```",
	}}
	r := New(completer)

	result := r.Route(context.Background(), "what is glycerin?", nil)

	if result.Worker != core.DefaultWorker {
		t.Errorf("Worker: got %s, want %s", result.Worker, core.DefaultWorker)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Confidence: got %v, want 0.5", result.Confidence)
	}
	if completer.calls != 1 {
		t.Errorf("calls: got %d, want 1", completer.calls)
	}
}

func TestRouteMissingConfidence(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`{"worker": "ingredient"}`,
	}}
	r := New(completer)

	result := r.Route(context.Background(), "CAS for glycerin?", nil)

	if result.Confidence != 0.5 {
		t.Errorf("Confidence: got %v, want 0.5", result.Confidence)
	}
}

func TestRouteRetriesOnce(t *testing.T) {
	completer := &scriptedCompleter{
		responses: []string{
			"I think this is an ingredient question.", // not JSON
			`{"worker": "ingredient", "confidence": 0.7}`,
		},
		errs: []error{nil, nil},
	}
	r := New(completer)

	result := r.Route(context.Background(), "CAS for glycerin?", nil)

	if completer.calls != 2 {
		t.Errorf("calls: got %d, want 2", completer.calls)
	}
	if result.Worker != core.WorkerIngredient || result.Confidence != 0.7 {
		t.Errorf("got {%s %v}, want {ingredient 0.7}", result.Worker, result.Confidence)
	}
}

func TestRouteFallbackAfterTwoFailures(t *testing.T) {
	upstream := errors.New("upstream unavailable")
	completer := &scriptedCompleter{
		responses: []string{"", ""},
		errs:      []error{upstream, upstream},
	}
	r := New(completer)

	result := r.Route(context.Background(), "CAS for glycerin?", nil)

	if completer.calls != 2 {
		t.Errorf("calls: got %d, want 2", completer.calls)
	}
	if result.Worker != core.DefaultWorker {
		t.Errorf("Worker: got %s, want %s", result.Worker, core.DefaultWorker)
	}
	if result.Confidence != 0.5 {
		t.Errorf("Confidence: got %v, want 0.5", result.Confidence)
	}
}

func TestRouteMissingWorkerField(t *testing.T) {
	// A syntactically valid response without the worker field is a parse
	// failure, so it burns an attempt on each of the two tries.
	completer := &scriptedCompleter{
		responses: []string{
			`{"confidence": 0.9}`,
			`{"confidence": 0.9}`,
		},
	}
	r := New(completer)

	result := r.Route(context.Background(), "CAS for glycerin?", nil)

	if completer.calls != 2 {
		t.Errorf("calls: got %d, want 2", completer.calls)
	}
	if result.Worker != core.DefaultWorker {
		t.Errorf("Worker: got %s, want %s", result.Worker, core.DefaultWorker)
	}
}

func TestFormatContext(t *testing.T) {
	if got := formatContext(nil); got != "none" {
		t.Errorf(`formatContext(nil): got %q, want "none"`, got)
	}

	entries := []core.ChatEntry{
		{Role: core.RoleUser, Content: "one"},
		{Role: core.RoleAssistant, Content: "two"},
		{Role: core.RoleUser, Content: "three"},
		{Role: core.RoleAssistant, Content: "four"},
	}

	got := formatContext(entries)
	want := "Assistant: two\nUser: three\nAssistant: four"
	if got != want {
		t.Errorf("formatContext: got %q, want %q", got, want)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"worker": "ingredient"}`, `{"worker": "ingredient"}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Here you go:\n```json\n{\"a\": 1}\n```\nDone.", `{"a": 1}`},
		{"```json\n{\"a\": 1}", `{"a": 1}`}, // unterminated fence
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

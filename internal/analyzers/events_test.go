package analyzers

import (
	"context"
	"reflect"
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

func TestEventsTopicMismatch(t *testing.T) {
	src := srcSet(`pub fn send(env: Env, from: Address, amount: i128) {
    env.events().publish((symbol_short!("transfer"), from), amount);
}

pub fn send_to(env: Env, from: Address, to: Address, amount: i128) {
    env.events().publish((symbol_short!("transfer"), from, to), amount);
}
`)
	e := &events{}
	findings, err := e.Analyze(context.Background(), nil, src, config.Default())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	issue := findings[0].Raw.(model.EventIssue)
	if issue.EventName != "transfer" {
		t.Fatalf("event name = %q", issue.EventName)
	}
	if !reflect.DeepEqual(issue.TopicCounts, []int{2, 3}) {
		t.Fatalf("topic counts = %v", issue.TopicCounts)
	}
	if findings[0].Severity != model.SeverityMedium {
		t.Fatalf("severity = %s", findings[0].Severity)
	}
}

func TestEventsConsistentPublishes(t *testing.T) {
	src := srcSet(`pub fn a(env: Env) {
    env.events().publish((symbol_short!("mint"), to), amount);
}
pub fn b(env: Env) {
    env.events().publish((symbol_short!("mint"), other), amount);
}
`)
	e := &events{}
	findings, _ := e.Analyze(context.Background(), nil, src, config.Default())
	if len(findings) != 0 {
		t.Fatalf("consistent events flagged: %+v", findings)
	}
}

func TestEventsSymbolNewNaming(t *testing.T) {
	src := srcSet(`pub fn a(env: Env) {
    env.events().publish((Symbol::new(&env, "approval"), owner), v);
}
pub fn b(env: Env) {
    env.events().publish((Symbol::new(&env, "approval"), owner, spender), v);
}
`)
	e := &events{}
	findings, _ := e.Analyze(context.Background(), nil, src, config.Default())
	if len(findings) != 1 || findings[0].Raw.(model.EventIssue).EventName != "approval" {
		t.Fatalf("Symbol::new naming not picked up: %+v", findings)
	}
}

func TestTopicCount(t *testing.T) {
	cases := []struct {
		args string
		want int
	}{
		{`(symbol_short!("t"), a, b), data`, 3},
		{`(symbol_short!("t"),), data`, 1},
		{`symbol_short!("t"), data`, 1},
		{`(), data`, 0},
	}
	for _, c := range cases {
		if got := topicCount(c.args); got != c.want {
			t.Fatalf("topicCount(%q) = %d, want %d", c.args, got, c.want)
		}
	}
}

package streamclient

import (
	"testing"
)

func TestBeginTurnAddsPlaceholder(t *testing.T) {
	r := NewReducer()

	token, err := r.BeginTurn("hello")
	if err != nil {
		t.Fatalf("BeginTurn failed: %v", err)
	}
	if token == 0 {
		t.Fatal("expected non-zero token")
	}

	messages := r.Messages()
	if len(messages) != 2 {
		t.Fatalf("expected user + placeholder, got %d messages", len(messages))
	}
	if messages[0].Role != RoleUser || messages[0].Text != "hello" {
		t.Fatalf("unexpected user message: %+v", messages[0])
	}
	if messages[1].Role != RoleAssistant || !messages[1].Pending || messages[1].Text != "" {
		t.Fatalf("unexpected placeholder: %+v", messages[1])
	}
}

func TestBeginTurnRejectsConcurrentTurn(t *testing.T) {
	r := NewReducer()

	if _, err := r.BeginTurn("first"); err != nil {
		t.Fatalf("BeginTurn failed: %v", err)
	}
	if _, err := r.BeginTurn("second"); err != ErrTurnInProgress {
		t.Fatalf("expected ErrTurnInProgress, got %v", err)
	}
}

func TestApplyFragmentAccumulatesInOrder(t *testing.T) {
	r := NewReducer()
	token, _ := r.BeginTurn("q")

	r.ApplyFragment(token, "The ")
	r.ApplyFragment(token, "answer ")
	r.ApplyFragment(token, "is 42.")
	r.CompleteTurn(token)

	messages := r.Messages()
	reply := messages[len(messages)-1]
	if reply.Text != "The answer is 42." {
		t.Fatalf("fragments lost or reordered: %q", reply.Text)
	}
	if reply.Pending {
		t.Fatal("completed reply still pending")
	}
	if r.Streaming() {
		t.Fatal("reducer still streaming after completion")
	}
}

func TestStaleFragmentsAreDropped(t *testing.T) {
	r := NewReducer()

	first, _ := r.BeginTurn("q1")
	r.ApplyFragment(first, "old")
	r.FailTurn(first, "TIMEOUT")

	second, _ := r.BeginTurn("q2")
	r.ApplyFragment(second, "new")

	// late frames from the failed stream
	r.ApplyFragment(first, " GHOST")
	r.CompleteTurn(first)

	if !r.Streaming() {
		t.Fatal("stale CompleteTurn must not end the active turn")
	}

	r.CompleteTurn(second)
	messages := r.Messages()
	reply := messages[len(messages)-1]
	if reply.Text != "new" {
		t.Fatalf("stale fragment leaked into active turn: %q", reply.Text)
	}
}

func TestFailTurnKeepsPartialText(t *testing.T) {
	r := NewReducer()
	token, _ := r.BeginTurn("q")

	r.ApplyFragment(token, "partial rep")
	r.FailTurn(token, "MODEL_UNAVAILABLE")

	messages := r.Messages()
	reply := messages[len(messages)-1]
	if reply.Text != "partial rep" {
		t.Fatalf("partial text lost: %q", reply.Text)
	}
	if reply.FailureReason != "MODEL_UNAVAILABLE" {
		t.Fatalf("missing failure annotation: %+v", reply)
	}
	if reply.Pending {
		t.Fatal("failed reply still pending")
	}
}

func TestFailTurnRemovesEmptyPlaceholder(t *testing.T) {
	r := NewReducer()
	token, _ := r.BeginTurn("q")

	r.FailTurn(token, "MODEL_UNAVAILABLE")

	messages := r.Messages()
	if len(messages) != 1 {
		t.Fatalf("empty placeholder not removed: %+v", messages)
	}
	if messages[0].Role != RoleUser {
		t.Fatalf("user message must survive: %+v", messages[0])
	}
}

func TestNewReducerSeedsHistory(t *testing.T) {
	r := NewReducer(
		Message{Role: RoleUser, Text: "earlier question"},
		Message{Role: RoleAssistant, Text: "earlier answer"},
	)

	token, err := r.BeginTurn("follow-up")
	if err != nil {
		t.Fatalf("BeginTurn failed: %v", err)
	}
	r.ApplyFragment(token, "reply")
	r.CompleteTurn(token)

	messages := r.Messages()
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(messages))
	}
	if messages[0].Text != "earlier question" || messages[3].Text != "reply" {
		t.Fatalf("history not preserved: %+v", messages)
	}
}

package conversation

import (
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestWindowAlwaysStartsWithSystemPrompt(t *testing.T) {
	b := NewWindowBuilder("be helpful", 5)

	window := b.Build(nil)
	if len(window) != 1 {
		t.Fatalf("expected system-only window, got %d messages", len(window))
	}
	if window[0].Role != openai.ChatMessageRoleSystem || window[0].Content != "be helpful" {
		t.Fatalf("unexpected system message: %+v", window[0])
	}
}

func TestWindowKeepsMostRecentMessages(t *testing.T) {
	b := NewWindowBuilder("sys", 3)

	conv := New("conv_windowtest", nil)
	for i := 0; i < 10; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		conv.Messages = append(conv.Messages, Message{
			Role:    role,
			Content: fmt.Sprintf("message %d", i),
		})
	}

	window := b.Build(conv)
	if len(window) != 4 {
		t.Fatalf("expected system + 3 messages, got %d", len(window))
	}
	for i, want := range []string{"message 7", "message 8", "message 9"} {
		if window[i+1].Content != want {
			t.Fatalf("window[%d]: expected %q, got %q", i+1, want, window[i+1].Content)
		}
	}
}

func TestWindowExcludesSystemRoleMessages(t *testing.T) {
	b := NewWindowBuilder("sys", 10)

	conv := New("conv_windowtest", nil)
	conv.Messages = []Message{
		{Role: RoleSystem, Content: "stored directive"},
		{Role: RoleUser, Content: "question"},
		{Role: RoleAssistant, Content: "answer"},
	}

	window := b.Build(conv)
	if len(window) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(window))
	}
	if window[1].Content != "question" || window[2].Content != "answer" {
		t.Fatalf("unexpected window contents: %+v", window[1:])
	}
}

func TestWindowDoesNotMutateConversation(t *testing.T) {
	b := NewWindowBuilder("sys", 1)

	conv := New("conv_windowtest", nil)
	conv.Messages = []Message{
		{Role: RoleUser, Content: "one"},
		{Role: RoleUser, Content: "two"},
	}

	_ = b.Build(conv)
	if len(conv.Messages) != 2 {
		t.Fatalf("conversation mutated: %d messages", len(conv.Messages))
	}
}

func TestWindowSizeFallback(t *testing.T) {
	if got := NewWindowBuilder("sys", 0).Size(); got != DefaultWindowSize {
		t.Fatalf("expected fallback to %d, got %d", DefaultWindowSize, got)
	}
	if got := NewWindowBuilder("sys", 7).Size(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

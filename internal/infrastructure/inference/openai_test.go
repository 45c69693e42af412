package inference

import (
	"context"
	"io"
	"strings"
	"testing"
)

func collectEvents(t *testing.T, body string) []StreamEvent {
	t.Helper()

	g := &OpenAIGateway{name: "test"}
	events := make(chan StreamEvent, eventBufferSize)
	go g.scanStream(context.Background(), io.NopCloser(strings.NewReader(body)), events)

	var out []StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestScanStreamNormalizesFragments(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"Hel"}}]}`,
		``,
		`data: {"choices":[{"delta":{"content":"lo"}}]}`,
		``,
		`data: [DONE]`,
		``,
	}, "\n")

	events := collectEvents(t, body)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != StreamEventFragment || events[0].Text != "Hel" {
		t.Fatalf("unexpected first event: %+v", events[0])
	}
	if events[1].Type != StreamEventFragment || events[1].Text != "lo" {
		t.Fatalf("unexpected second event: %+v", events[1])
	}
	if events[2].Type != StreamEventDone {
		t.Fatalf("expected done event, got %+v", events[2])
	}
}

func TestScanStreamSkipsMalformedAndEmptyFrames(t *testing.T) {
	body := strings.Join([]string{
		`: keep-alive`,
		`data: not json at all`,
		`data: {"choices":[{"delta":{}}]}`,
		`data: {"choices":[{"delta":{"content":"ok"}}]}`,
		`data: [DONE]`,
	}, "\n")

	events := collectEvents(t, body)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Type != StreamEventFragment || events[0].Text != "ok" {
		t.Fatalf("unexpected fragment event: %+v", events[0])
	}
	if events[1].Type != StreamEventDone {
		t.Fatalf("expected done event, got %+v", events[1])
	}
}

func TestScanStreamTruncatedStreamStillCompletes(t *testing.T) {
	// a stream that ends without [DONE] must still terminate the sequence
	body := `data: {"choices":[{"delta":{"content":"partial"}}]}` + "\n"

	events := collectEvents(t, body)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if events[0].Text != "partial" {
		t.Fatalf("unexpected fragment: %+v", events[0])
	}
	if events[1].Type != StreamEventDone {
		t.Fatalf("expected done event, got %+v", events[1])
	}
}

func TestParseChunkJoinsMultipleChoices(t *testing.T) {
	text, ok := parseChunk(`{"choices":[{"delta":{"content":"a"}},{"delta":{"content":"b"}}]}`)
	if !ok {
		t.Fatal("expected chunk to parse")
	}
	if text != "ab" {
		t.Fatalf("expected %q, got %q", "ab", text)
	}
}

func TestRegistryDefaultAndLookup(t *testing.T) {
	providers := []Provider{
		{Name: "primary", Kind: ProviderOpenAI, BaseURL: "https://api.example.com/v1", DefaultModel: "gpt-4o-mini"},
		{Name: "fallback", Kind: ProviderOpenAICompatible, BaseURL: "http://localhost:8080/v1", DefaultModel: "local-model"},
	}

	reg, err := NewRegistry(providers)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	_, def := reg.Default()
	if def.Name != "primary" {
		t.Fatalf("expected default provider primary, got %s", def.Name)
	}

	_, p, err := reg.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get with empty name failed: %v", err)
	}
	if p.Name != "primary" {
		t.Fatalf("expected empty name to resolve to primary, got %s", p.Name)
	}

	_, p, err = reg.Get(context.Background(), "fallback")
	if err != nil {
		t.Fatalf("Get fallback failed: %v", err)
	}
	if p.DefaultModel != "local-model" {
		t.Fatalf("unexpected provider: %+v", p)
	}

	if _, _, err := reg.Get(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry([]Provider{
		{Name: "a", Kind: ProviderOpenAI},
		{Name: "a", Kind: ProviderOpenAI},
	})
	if err == nil {
		t.Fatal("expected duplicate provider error")
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://api.example.com/v1/", "https://api.example.com/v1"},
		{" https://api.example.com/v1 ", "https://api.example.com/v1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := normalizeBaseURL(tc.in); got != tc.want {
			t.Errorf("normalizeBaseURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

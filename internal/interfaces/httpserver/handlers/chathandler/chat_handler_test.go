package chathandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	openai "github.com/sashabaranov/go-openai"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/config"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/engine"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/inference"
	chatrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/chat"
	chatresponses "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses/chat"
)

type stubGateway struct {
	text    string
	gotOpts inference.Options
}

func (g *stubGateway) Complete(ctx context.Context, messages []openai.ChatCompletionMessage, opts inference.Options) (*inference.Completion, error) {
	g.gotOpts = opts
	return &inference.Completion{Text: g.text, ModelID: opts.Model}, nil
}

func (g *stubGateway) StreamComplete(ctx context.Context, messages []openai.ChatCompletionMessage, opts inference.Options) (<-chan inference.StreamEvent, error) {
	g.gotOpts = opts
	ch := make(chan inference.StreamEvent, 2)
	ch <- inference.StreamEvent{Type: inference.StreamEventFragment, Text: g.text}
	ch <- inference.StreamEvent{Type: inference.StreamEventDone}
	close(ch)
	return ch, nil
}

type stubResolver struct {
	gateway inference.Gateway
}

func (r *stubResolver) Get(ctx context.Context, name string) (inference.Gateway, inference.Provider, error) {
	return r.gateway, inference.Provider{Name: "test", Kind: inference.ProviderOpenAICompatible, DefaultModel: "test-model"}, nil
}

func newTestHandler(t *testing.T, gw inference.Gateway, cfg *config.Config) (*ChatHandler, *conversation.Service) {
	t.Helper()
	svc := conversation.NewService(conversation.NewMemoryRepository())
	window := conversation.NewWindowBuilder("You are a helpful mentor.", 15)
	coord := engine.NewCoordinator(svc, window, &stubResolver{gateway: gw}, 0)
	return NewChatHandler(coord, cfg), svc
}

func newTurnContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	reqCtx, _ := gin.CreateTestContext(recorder)
	reqCtx.Request = httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader("{}"))
	return reqCtx, recorder
}

func TestCreateTurnStartsConversationWhenIDOmitted(t *testing.T) {
	gw := &stubGateway{text: "hello there"}
	handler, svc := newTestHandler(t, gw, &config.Config{})
	reqCtx, recorder := newTurnContext(t)

	handler.CreateTurn(reqCtx, chatrequests.TurnRequest{Content: "hi"})

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}

	var resp chatresponses.TurnResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Conversation == nil {
		t.Fatal("response is missing the conversation object")
	}
	if !strings.HasPrefix(resp.Conversation.ID, "conv_") {
		t.Fatalf("unexpected conversation ID: %q", resp.Conversation.ID)
	}
	if resp.Conversation.MessageCount != 2 {
		t.Fatalf("expected 2 messages after the turn, got %d", resp.Conversation.MessageCount)
	}
	if resp.Conversation.UpdatedAt == 0 {
		t.Fatal("conversation updated_at not set")
	}

	conv, err := svc.GetConversation(context.Background(), resp.Conversation.ID)
	if err != nil {
		t.Fatalf("created conversation not retrievable: %v", err)
	}
	if conv.MessageCount() != 2 {
		t.Fatalf("expected user and assistant messages persisted, got %d", conv.MessageCount())
	}
}

func TestCreateTurnReturnsConversationSnapshot(t *testing.T) {
	gw := &stubGateway{text: "sure"}
	handler, svc := newTestHandler(t, gw, &config.Config{})
	conv, err := svc.CreateConversation(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	reqCtx, recorder := newTurnContext(t)

	handler.CreateTurn(reqCtx, chatrequests.TurnRequest{ConversationID: conv.PublicID, Content: "hi"})

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
	}
	var resp chatresponses.TurnResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Conversation == nil || resp.Conversation.ID != conv.PublicID {
		t.Fatalf("expected conversation %q in response, got %+v", conv.PublicID, resp.Conversation)
	}
	if resp.Conversation.MessageCount != 2 {
		t.Fatalf("expected message_count 2, got %d", resp.Conversation.MessageCount)
	}
	if resp.AssistantMessage == nil || resp.AssistantMessage.Content != "sure" {
		t.Fatalf("unexpected assistant message: %+v", resp.AssistantMessage)
	}
}

func TestCreateTurnCapsResponseTokens(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		requested int
		want      int
	}{
		{name: "request above cap is clamped", limit: 512, requested: 100000, want: 512},
		{name: "unset request inherits cap", limit: 512, requested: 0, want: 512},
		{name: "request below cap is kept", limit: 512, requested: 64, want: 64},
		{name: "no cap passes request through", limit: 0, requested: 2048, want: 2048},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{text: "ok"}
			handler, _ := newTestHandler(t, gw, &config.Config{MaxResponseTokens: tt.limit})
			reqCtx, recorder := newTurnContext(t)

			handler.CreateTurn(reqCtx, chatrequests.TurnRequest{Content: "hi", MaxTokens: tt.requested})

			if recorder.Code != http.StatusOK {
				t.Fatalf("unexpected status %d: %s", recorder.Code, recorder.Body.String())
			}
			if gw.gotOpts.MaxTokens != tt.want {
				t.Fatalf("gateway saw max_tokens %d, want %d", gw.gotOpts.MaxTokens, tt.want)
			}
		})
	}
}

func TestCreateTurnStreamingAnnouncesNewConversation(t *testing.T) {
	gw := &stubGateway{text: "streamed"}
	handler, svc := newTestHandler(t, gw, &config.Config{})
	reqCtx, recorder := newTurnContext(t)

	handler.CreateTurn(reqCtx, chatrequests.TurnRequest{Content: "hi", Stream: true})

	convID := recorder.Header().Get("X-Conversation-Id")
	if !strings.HasPrefix(convID, "conv_") {
		t.Fatalf("streaming response must announce the new conversation, got header %q", convID)
	}
	if _, err := svc.GetConversation(context.Background(), convID); err != nil {
		t.Fatalf("announced conversation not retrievable: %v", err)
	}
	body := recorder.Body.String()
	if !strings.Contains(body, `"fragment"`) || !strings.Contains(body, "streamed") {
		t.Fatalf("expected fragment frames in stream, got %q", body)
	}
	if !strings.Contains(body, `"done"`) {
		t.Fatalf("expected terminal done frame, got %q", body)
	}
}

package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/domain/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/inference"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/logger"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/metrics"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/observability"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// GatewayResolver selects a model backend by provider name. An empty name
// resolves to the default backend.
type GatewayResolver interface {
	Get(ctx context.Context, name string) (inference.Gateway, inference.Provider, error)
}

// Coordinator runs assistant turns end to end: it persists the user message,
// builds the bounded context window, streams the model response to the
// transport, and finalizes the assistant message exactly once, whatever
// happened mid-stream. One turn per conversation runs at a time.
type Coordinator struct {
	conversations *conversation.Service
	window        *conversation.WindowBuilder
	resolver      GatewayResolver
	turnTimeout   time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

// NewCoordinator creates a coordinator. A non-positive turnTimeout disables
// the overall turn deadline.
func NewCoordinator(conversations *conversation.Service, window *conversation.WindowBuilder, resolver GatewayResolver, turnTimeout time.Duration) *Coordinator {
	return &Coordinator{
		conversations: conversations,
		window:        window,
		resolver:      resolver,
		turnTimeout:   turnTimeout,
		active:        make(map[string]struct{}),
	}
}

// acquire reserves the conversation for one turn. It reports false when a turn
// is already running there.
func (c *Coordinator) acquire(conversationID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.active[conversationID]; busy {
		return false
	}
	c.active[conversationID] = struct{}{}
	return true
}

func (c *Coordinator) release(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, conversationID)
}

// EnsureConversation resolves the conversation a turn runs against. An empty
// ID starts a fresh conversation; its title is derived from the first user
// message later in the turn.
func (c *Coordinator) EnsureConversation(ctx context.Context, conversationID string) (string, error) {
	if strings.TrimSpace(conversationID) != "" {
		return conversationID, nil
	}
	conv, err := c.conversations.CreateConversation(ctx, nil)
	if err != nil {
		return "", err
	}
	return conv.PublicID, nil
}

// preparedTurn is the state shared by the streaming and blocking paths after
// the user message is persisted and the window is built.
type preparedTurn struct {
	userMessage *conversation.Message
	messages    []openai.ChatCompletionMessage
	gateway     inference.Gateway
	provider    inference.Provider
	model       string
}

// prepare persists the user message, derives the title if missing, and builds
// the context window. The just-submitted user message is part of its own
// turn's window.
func (c *Coordinator) prepare(ctx context.Context, req TurnRequest) (*preparedTurn, error) {
	log := logger.GetLogger()

	userMsg, err := c.conversations.AppendMessage(ctx, req.ConversationID, conversation.RoleUser, req.UserContent, nil)
	if err != nil {
		return nil, err
	}

	conv, err := c.conversations.GetConversation(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if _, titleErr := c.conversations.EnsureTitle(ctx, conv, req.UserContent); titleErr != nil {
		log.Warn().Err(titleErr).Str("conversation_id", req.ConversationID).Msg("failed to derive conversation title")
	}

	gateway, provider, err := c.resolver.Get(ctx, req.Provider)
	if err != nil {
		return nil, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = provider.DefaultModel
	}

	return &preparedTurn{
		userMessage: userMsg,
		messages:    c.window.Build(conv),
		gateway:     gateway,
		provider:    provider,
		model:       model,
	}, nil
}

// StreamTurn runs one streaming turn. Failures before the stream opens are
// returned as errors with nothing sent on the transport; once streaming has
// begun, failures are reported through the transport's error frame and the
// returned result, and whatever text accumulated is persisted.
func (c *Coordinator) StreamTurn(ctx context.Context, req TurnRequest, transport Transport) (*TurnResult, error) {
	log := logger.GetLogger()

	ctx, span := observability.StartSpan(ctx, "engine.StreamTurn")
	defer span.End()

	if !c.acquire(req.ConversationID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTurnInProgress, "a turn is already in progress for this conversation", nil, "7d3e9f2a-6b8c-4d1e-a5f0-9c2b4e6d8a13")
	}
	defer c.release(req.ConversationID)

	prep, err := c.prepare(ctx, req)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, err
	}
	observability.AddSpanAttributes(ctx,
		attribute.String("conversation.id", req.ConversationID),
		attribute.String("model.id", prep.model),
		attribute.String("provider.name", prep.provider.Name),
	)

	var turnCtx context.Context
	var cancel context.CancelFunc
	if c.turnTimeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, c.turnTimeout)
	} else {
		turnCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	events, err := prep.gateway.StreamComplete(turnCtx, prep.messages, inference.Options{
		Model:       prep.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		metrics.RecordProviderError(prep.provider.Name, errorTypeOf(err))
		observability.RecordError(ctx, err)
		return nil, err
	}

	metrics.IncrementActiveStreams(prep.model)
	defer metrics.DecrementActiveStreams(prep.model)

	var builder strings.Builder
	var failure error
	firstFragment := true

	streaming := true
	for streaming {
		select {
		case <-turnCtx.Done():
			failure = c.contextFailure(turnCtx)
			streaming = false

		case ev, ok := <-events:
			if !ok {
				// producer stopped without a terminal event; this
				// only happens when the context was cancelled
				if turnCtx.Err() != nil {
					failure = c.contextFailure(turnCtx)
				}
				streaming = false
				break
			}
			switch ev.Type {
			case inference.StreamEventFragment:
				if firstFragment {
					metrics.RecordFirstFragment(prep.model, prep.provider.Name, time.Since(start).Seconds())
					firstFragment = false
				}
				builder.WriteString(ev.Text)
				metrics.RecordFragment(prep.model)

				if sendErr := transport.Send(ev.Text); sendErr != nil {
					failure = platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransportClosed, "client transport failed", sendErr, "e8a1c3b5-7d9f-4a2b-8c4d-6e0f2a4b6c85")
					cancel()
					streaming = false
				}

			case inference.StreamEventDone:
				streaming = false

			case inference.StreamEventError:
				failure = ev.Err
				metrics.RecordProviderError(prep.provider.Name, errorTypeOf(ev.Err))
				streaming = false
			}
		}
	}
	metrics.RecordModelDuration(prep.model, prep.provider.Name, true, time.Since(start).Seconds())

	result := c.finalize(ctx, req, prep, builder.String(), failure)

	if failure != nil {
		if sendErr := transport.SendError(result.FailureReason); sendErr != nil {
			log.Debug().Err(sendErr).Str("conversation_id", req.ConversationID).Msg("unable to deliver error frame")
		}
	}
	if closeErr := transport.Close(); closeErr != nil {
		log.Debug().Err(closeErr).Str("conversation_id", req.ConversationID).Msg("unable to close transport")
	}

	if failure != nil {
		observability.RecordError(ctx, failure)
	}
	metrics.RecordTurn(prep.model, string(result.State))
	return result, nil
}

// CompleteTurn runs one blocking turn and returns the full assistant text.
func (c *Coordinator) CompleteTurn(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	ctx, span := observability.StartSpan(ctx, "engine.CompleteTurn")
	defer span.End()

	if !c.acquire(req.ConversationID) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTurnInProgress, "a turn is already in progress for this conversation", nil, "2b4d6f8a-0c2e-4f6a-8b0d-2e4f6a8c0e27")
	}
	defer c.release(req.ConversationID)

	prep, err := c.prepare(ctx, req)
	if err != nil {
		observability.RecordError(ctx, err)
		return nil, err
	}
	observability.AddSpanAttributes(ctx,
		attribute.String("conversation.id", req.ConversationID),
		attribute.String("model.id", prep.model),
		attribute.String("provider.name", prep.provider.Name),
	)

	var turnCtx context.Context
	var cancel context.CancelFunc
	if c.turnTimeout > 0 {
		turnCtx, cancel = context.WithTimeout(ctx, c.turnTimeout)
	} else {
		turnCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	start := time.Now()
	completion, err := prep.gateway.Complete(turnCtx, prep.messages, inference.Options{
		Model:       prep.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	metrics.RecordModelDuration(prep.model, prep.provider.Name, false, time.Since(start).Seconds())
	if err != nil {
		metrics.RecordProviderError(prep.provider.Name, errorTypeOf(err))
		metrics.RecordTurn(prep.model, string(TurnStateFailed))
		observability.RecordError(ctx, err)
		return nil, err
	}

	metrics.RecordTokens(prep.model, prep.provider.Name, completion.Usage.PromptTokens, completion.Usage.CompletionTokens)

	result := c.finalize(ctx, req, prep, completion.Text, nil)
	metrics.RecordTurn(prep.model, string(result.State))
	return result, nil
}

// finalize persists whatever assistant text the turn produced. It runs exactly
// once per turn, on every path out of the streaming loop. An empty text with a
// failure leaves no assistant message; the user message stays either way. A
// turn whose partial text made it into the store counts as completed, with
// Partial and FailureReason describing the cut.
func (c *Coordinator) finalize(ctx context.Context, req TurnRequest, prep *preparedTurn, text string, failure error) *TurnResult {
	log := logger.GetLogger()

	result := &TurnResult{
		State:       TurnStateCompleted,
		UserMessage: prep.userMessage,
		Text:        text,
		Model:       prep.model,
	}
	if failure != nil {
		result.State = TurnStateFailed
		result.Partial = true
		result.FailureReason = errorTypeOf(failure)
	}

	if text != "" {
		metadata := map[string]string{metadataKeyModel: prep.model}
		if result.Partial {
			metadata[metadataKeyIncomplete] = "true"
		}

		msg, err := c.conversations.AppendMessage(ctx, req.ConversationID, conversation.RoleAssistant, text, metadata)
		if err != nil {
			log.Error().
				Err(err).
				Str("conversation_id", req.ConversationID).
				Int("text_len", len(text)).
				Msg("failed to persist assistant message")
			result.State = TurnStateFailed
			result.Partial = true
			result.FailureReason = errorTypeOf(err)
		} else {
			result.AssistantMessage = msg
			result.State = TurnStateCompleted
		}
	}

	conv, err := c.conversations.GetConversation(ctx, req.ConversationID)
	if err != nil {
		log.Warn().Err(err).Str("conversation_id", req.ConversationID).Msg("failed to reload conversation after turn")
	} else {
		result.Conversation = conv
	}
	return result
}

// contextFailure maps a finished context onto the error taxonomy: a deadline
// means the turn timed out, a plain cancel means the client went away.
func (c *Coordinator) contextFailure(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTimeout, "turn deadline exceeded", ctx.Err(), "f1a3b5c7-9d1e-4f3a-5b7c-9d1e3f5a7b09")
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeTransportClosed, "turn cancelled", ctx.Err(), "0c2e4a6b-8d0f-4a2c-6e8a-0c2e4a6b8d01")
}

// errorTypeOf extracts the machine-readable reason sent to clients.
func errorTypeOf(err error) string {
	var pe *platformerrors.PlatformError
	if errors.As(err, &pe) {
		return string(pe.Type)
	}
	return string(platformerrors.ErrorTypeInternal)
}

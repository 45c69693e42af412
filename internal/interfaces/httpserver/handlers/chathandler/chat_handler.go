package chathandler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/config"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/engine"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/logger"
	chatrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/chat"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses"
	chatresponses "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses/chat"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/sse"
)

// ChatHandler runs assistant turns. It owns the split between the blocking
// JSON path and the SSE streaming path.
type ChatHandler struct {
	coordinator *engine.Coordinator
	config      *config.Config
}

func NewChatHandler(coordinator *engine.Coordinator, cfg *config.Config) *ChatHandler {
	return &ChatHandler{
		coordinator: coordinator,
		config:      cfg,
	}
}

// CreateTurn submits one user turn. An omitted conversation ID starts a fresh
// conversation first; streaming callers learn its ID from the
// X-Conversation-Id response header. Streaming requests switch the response to
// server-sent events before any frame is written; failures that happen before
// the stream opens still go out as a plain JSON error.
func (h *ChatHandler) CreateTurn(reqCtx *gin.Context, req chatrequests.TurnRequest) {
	ctx := reqCtx.Request.Context()

	conversationID, err := h.coordinator.EnsureConversation(ctx, req.ConversationID)
	if err != nil {
		responses.HandleError(reqCtx, err, "failed to start conversation")
		return
	}

	turnReq := engine.TurnRequest{
		ConversationID: conversationID,
		UserContent:    req.Content,
		Provider:       req.Provider,
		Model:          req.Model,
		Temperature:    req.Temperature,
		MaxTokens:      h.responseTokenLimit(req.MaxTokens),
	}

	if !req.Stream {
		result, err := h.coordinator.CompleteTurn(ctx, turnReq)
		if err != nil {
			responses.HandleError(reqCtx, err, "turn failed")
			return
		}
		reqCtx.JSON(http.StatusOK, chatresponses.NewTurnResponse(conversationID, result))
		return
	}

	reqCtx.Writer.Header().Set("X-Conversation-Id", conversationID)
	sse.PrepareHeaders(reqCtx)
	transport := sse.NewTransport(reqCtx, h.config.StreamWriteTimeout)

	result, err := h.coordinator.StreamTurn(ctx, turnReq, transport)
	if err != nil {
		// nothing was written yet, so the caller still gets a JSON error
		reqCtx.Writer.Header().Set("Content-Type", "application/json")
		responses.HandleError(reqCtx, err, "turn failed")
		return
	}

	log := logger.GetLogger()
	log.Info().
		Str("conversation_id", conversationID).
		Str("model", result.Model).
		Str("state", string(result.State)).
		Bool("partial", result.Partial).
		Msg("streaming turn finished")
}

// responseTokenLimit applies the configured response length cap: requests may
// ask for fewer tokens, never more, and inherit the cap when they ask for none.
func (h *ChatHandler) responseTokenLimit(requested int) int {
	limit := h.config.MaxResponseTokens
	if limit <= 0 {
		return requested
	}
	if requested <= 0 || requested > limit {
		return limit
	}
	return requested
}

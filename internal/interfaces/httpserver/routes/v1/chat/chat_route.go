package chat

import (
	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/handlers/chathandler"
	chatrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/chat"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

type ChatRoute struct {
	handler *chathandler.ChatHandler
}

func NewChatRoute(handler *chathandler.ChatHandler) *ChatRoute {
	return &ChatRoute{
		handler: handler,
	}
}

func (route *ChatRoute) RegisterRouter(router gin.IRouter) {
	router.POST("/chat", route.createTurn)
}

func (route *ChatRoute) createTurn(reqCtx *gin.Context) {
	var req chatrequests.TurnRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "5b7d9f1a-3c5e-47a9-b1d3-f5a7c9e1b3d5")
		return
	}

	route.handler.CreateTurn(reqCtx, req)
}

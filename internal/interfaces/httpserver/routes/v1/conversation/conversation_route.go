package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/handlers/conversationhandler"
	conversationrequests "github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/requests/conversation"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/interfaces/httpserver/responses"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

type ConversationRoute struct {
	handler *conversationhandler.ConversationHandler
}

func NewConversationRoute(handler *conversationhandler.ConversationHandler) *ConversationRoute {
	return &ConversationRoute{
		handler: handler,
	}
}

func (route *ConversationRoute) RegisterRouter(router gin.IRouter) {
	conversations := router.Group("/conversations")
	conversations.GET("", route.listConversations)
	conversations.POST("", route.createConversation)
	conversations.GET("/:conv_public_id", route.getConversation)
	conversations.POST("/:conv_public_id", route.updateConversation)
	conversations.POST("/:conv_public_id/archive", route.archiveConversation)
	conversations.DELETE("/:conv_public_id", route.deleteConversation)
	conversations.POST("/:conv_public_id/messages", route.createMessage)
	conversations.POST("/:conv_public_id/messages/:message_id", route.updateMessage)
	conversations.DELETE("/:conv_public_id/messages/:message_id", route.deleteMessage)
}

func (route *ConversationRoute) listConversations(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var query conversationrequests.ListConversationsQuery
	if err := reqCtx.ShouldBindQuery(&query); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid query parameters", "4f8a2c6e-1b3d-45e7-9a0c-2d4f6e8a0b1c")
		return
	}
	if query.Limit <= 0 || query.Limit > 100 {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "limit must be between 1 and 100", "9c1e3a5b-7d9f-41a3-b5c7-d9e1f3a5b7c9")
		return
	}
	if query.Offset < 0 {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "offset must not be negative", "2a4c6e8b-0d2f-4a6c-8e0b-2d4f6a8c0e2b")
		return
	}

	response, err := route.handler.ListConversations(ctx, query.Limit, query.Offset)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to list conversations")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) createConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req conversationrequests.CreateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "6e8a0c2d-4f6a-48c0-a2d4-f6e8a0c2d4f6")
		return
	}

	response, err := route.handler.CreateConversation(ctx, req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to create conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) getConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := route.handler.GetConversation(ctx, reqCtx.Param("conv_public_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to get conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) updateConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req conversationrequests.UpdateConversationRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "8b0d2f4a-6c8e-40a2-c4d6-e8f0a2b4c6d8")
		return
	}

	response, err := route.handler.UpdateConversation(ctx, reqCtx.Param("conv_public_id"), req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to update conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) archiveConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := route.handler.ArchiveConversation(ctx, reqCtx.Param("conv_public_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to archive conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) deleteConversation(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := route.handler.DeleteConversation(ctx, reqCtx.Param("conv_public_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete conversation")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) createMessage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req conversationrequests.CreateMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "3e5a7c9b-1d3f-4b5a-7c9e-1f3a5b7d9e1f")
		return
	}

	response, err := route.handler.CreateMessage(ctx, reqCtx.Param("conv_public_id"), req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to append message")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) updateMessage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	var req conversationrequests.UpdateMessageRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleNewError(reqCtx, platformerrors.ErrorTypeValidation, "invalid request body", "0d2f4a6c-8e0b-42c4-d6e8-f0a2b4c6d8e0")
		return
	}

	response, err := route.handler.UpdateMessage(ctx, reqCtx.Param("conv_public_id"), reqCtx.Param("message_id"), req)
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to update message")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

func (route *ConversationRoute) deleteMessage(reqCtx *gin.Context) {
	ctx := reqCtx.Request.Context()

	response, err := route.handler.DeleteMessage(ctx, reqCtx.Param("conv_public_id"), reqCtx.Param("message_id"))
	if err != nil {
		responses.HandleError(reqCtx, err, "Failed to delete message")
		return
	}

	reqCtx.JSON(http.StatusOK, response)
}

package responses

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/DigitariaWebs/corp1o1-sub005/internal/infrastructure/logger"
	"github.com/DigitariaWebs/corp1o1-sub005/internal/utils/platformerrors"
)

// ErrorResponse is the JSON error envelope returned by every endpoint.
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code,omitempty"`
}

// HandleError maps err onto an HTTP status using the typed error taxonomy and
// writes the error envelope. Unknown errors become 500 with the fallback
// message so internals never leak.
func HandleError(reqCtx *gin.Context, err error, fallbackMessage string) {
	log := logger.GetLogger()

	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		platformerrors.LogError(log, platformErr)
		reqCtx.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(platformErr.Type), ErrorResponse{
			Error:     string(platformErr.Type),
			Message:   platformErr.Message,
			RequestID: platformErr.RequestID,
			Code:      platformErr.UUID,
		})
		return
	}

	log.Error().Err(err).Msg(fallbackMessage)
	reqCtx.AbortWithStatusJSON(500, ErrorResponse{
		Error:   string(platformerrors.ErrorTypeInternal),
		Message: fallbackMessage,
	})
}

// HandleNewError writes an error envelope for a failure detected at the
// handler layer itself.
func HandleNewError(reqCtx *gin.Context, errType platformerrors.ErrorType, message string, code string) {
	err := platformerrors.NewError(reqCtx.Request.Context(), platformerrors.LayerHandler, errType, message, nil, code)
	HandleError(reqCtx, err, message)
}

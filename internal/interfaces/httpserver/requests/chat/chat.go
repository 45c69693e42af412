package chat

// TurnRequest submits one user turn against a conversation. An empty
// ConversationID starts a new conversation as part of the turn. When Stream is
// true the response is delivered as server-sent events; otherwise the full
// reply is returned as JSON.
type TurnRequest struct {
	ConversationID string  `json:"conversation_id"`
	Content        string  `json:"content" binding:"required"`
	Stream         bool    `json:"stream"`
	Provider       string  `json:"provider"`
	Model          string  `json:"model"`
	Temperature    float32 `json:"temperature"`
	MaxTokens      int     `json:"max_tokens"`
}

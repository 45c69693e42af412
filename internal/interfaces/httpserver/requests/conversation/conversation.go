package conversation

// CreateConversationRequest creates a conversation, optionally titled.
type CreateConversationRequest struct {
	Title *string `json:"title"`
}

// UpdateConversationRequest renames a conversation.
type UpdateConversationRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateMessageRequest appends a message to a conversation.
type CreateMessageRequest struct {
	Role     string            `json:"role" binding:"required"`
	Content  string            `json:"content" binding:"required"`
	Metadata map[string]string `json:"metadata"`
}

// UpdateMessageRequest replaces a message's content.
type UpdateMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListConversationsQuery carries pagination parameters.
type ListConversationsQuery struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

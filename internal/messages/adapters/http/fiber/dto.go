package fiber

// IngestMessageRequest represents one inbound chat message
// @Description Chat message ingestion DTO
type IngestMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

type IngestMessageResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
}

type BulkIngestRequest struct {
	Messages []IngestMessageRequest `json:"messages"`
}

type BulkIngestResponse struct {
	Ingested int `json:"ingested"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_message"`
	Message string `json:"message" example:"Message payload is invalid"`
}

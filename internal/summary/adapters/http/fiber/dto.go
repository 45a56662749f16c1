package fiber

type SummaryResponse struct {
	ChatID  int64  `json:"chat_id"`
	Window  string `json:"window"`
	Summary string `json:"summary"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

package fiber

// ChartPointDTO is one chart bucket
// @Description Labeled chart bucket, zero-filled when empty
type ChartPointDTO struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ActivityResponse struct {
	ChatID int64           `json:"chat_id"`
	Window string          `json:"window"`
	Points []ChartPointDTO `json:"points"`
}

type LeaderboardEntryDTO struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Count    int64  `json:"count"`
}

type LeaderboardResponse struct {
	ChatID  int64                 `json:"chat_id"`
	Window  string                `json:"window"`
	Entries []LeaderboardEntryDTO `json:"entries"`
}

type WordEntryDTO struct {
	Word  string `json:"word"`
	Count int64  `json:"count"`
}

type TopWordsResponse struct {
	ChatID int64          `json:"chat_id"`
	Window string         `json:"window"`
	Words  []WordEntryDTO `json:"words"`
}

type ResetResponse struct {
	Status string   `json:"status"`
	Failed []string `json:"failed,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error" example:"invalid_window"`
	Message string `json:"message" example:"Unsupported report window"`
}
